// Package fileid provides deterministic identifiers for documents and images.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const docPrefix = "doc:"

// hashPrefixLen is the number of hex characters of the content hash used in image file IDs.
const hashPrefixLen = 8

// DocID returns a stable document ID for the given path. The same cleaned
// path always yields the same ID, so re-ingesting a file overwrites its
// chunks instead of duplicating them.
func DocID(path string) string {
	normalized := filepath.Clean(path)
	hash := sha256.Sum256([]byte(normalized))
	return docPrefix + hex.EncodeToString(hash[:])
}

// ImageFileID returns the stored file name for an uploaded image:
// the first 8 hex characters of the content hash, an underscore, then the
// original name. Identical bytes with the same name always map to the same
// ID; different bytes get a different prefix, so name collisions across
// distinct content cannot overwrite each other.
func ImageFileID(content []byte, originalName string) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])[:hashPrefixLen] + "_" + filepath.Base(originalName)
}
