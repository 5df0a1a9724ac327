package images

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"
)

// exifFields are the tags captured into image records when present.
var exifFields = []exif.FieldName{
	exif.Make,
	exif.Model,
	exif.DateTime,
	exif.Orientation,
	exif.Software,
}

// extractExif returns the captured EXIF tags of an image, or nil when the
// format carries none (PNG, GIF, BMP) or decoding fails. EXIF is best-effort
// metadata; failures here never fail an upload.
func extractExif(data []byte) map[string]string {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	fields := make(map[string]string)
	for _, name := range exifFields {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		// StringVal unwraps ASCII tags; numeric tags fall back to raw formatting.
		if val, err := tag.StringVal(); err == nil {
			fields[string(name)] = val
		} else {
			fields[string(name)] = tag.String()
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
