package models

import "time"

// ImageRecord is the persisted metadata for one stored image, keyed in the
// metadata store by its file ID (content-hash-prefixed file name).
type ImageRecord struct {
	OriginalName  string            `json:"original_name"`
	Path          string            `json:"path"`
	ThumbnailPath string            `json:"thumbnail_path"`
	Category      string            `json:"category"`
	Tags          []string          `json:"tags"`
	Width         int               `json:"width"`
	Height        int               `json:"height"`
	Format        string            `json:"format"`
	Size          int64             `json:"size"`
	UploadTime    time.Time         `json:"upload_time"`
	Exif          map[string]string `json:"exif,omitempty"`
}

// ImageResult is an image search hit: the record plus its file ID.
type ImageResult struct {
	FileID string `json:"file_id"`
	ImageRecord
}

// ImageStats summarizes the image metadata store.
type ImageStats struct {
	TotalImages int            `json:"total_images"`
	TotalSize   int64          `json:"total_size"`
	Categories  map[string]int `json:"categories"`
	Formats     map[string]int `json:"formats"`
	Tags        map[string]int `json:"tags"`
}
