// Package models defines core data structures for documents, images, and search results.
package models

// DocumentMeta holds metadata attached to an ingested document and carried
// through the vector index to search results.
type DocumentMeta struct {
	FilePath string `json:"file_path"`
	FileName string `json:"file_name"`
	Category string `json:"category"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
}

// DocumentRecord is a document ready for indexing: extracted text plus metadata.
// It is derived at ingestion and not persisted as-is; its chunks are.
type DocumentRecord struct {
	Text string       `json:"text"`
	Meta DocumentMeta `json:"metadata"`
}

// DocResult is a single semantic search hit over document chunks.
// Content is a preview of the matching chunk, truncated at ingestion-side limits.
type DocResult struct {
	Content  string  `json:"content"`
	FileName string  `json:"file_name"`
	Category string  `json:"category"`
	FileType string  `json:"file_type"`
	FileSize int64   `json:"file_size"`
	Score    float64 `json:"score"`
}

// DocumentStats summarizes the document storage directory.
type DocumentStats struct {
	TotalFiles int            `json:"total_files"`
	TotalSize  int64          `json:"total_size"`
	FileTypes  map[string]int `json:"file_types"`
}
