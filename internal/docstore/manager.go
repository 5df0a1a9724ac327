// Package docstore ingests documents into the vector store and keeps raw
// copies alongside directory-scan statistics.
package docstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kioku/internal/config"
	"github.com/hyperjump/kioku/internal/extract"
	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/internal/vectorstore"
)

// categories is the fixed set offered for document classification.
var categories = []string{"general", "work", "study", "personal", "research"}

// Manager handles document ingestion, semantic search, and stats.
type Manager struct {
	documentsDir string
	topK         int
	extractor    *extract.Extractor
	store        *vectorstore.Store
	logger       *zap.Logger
}

// NewManager creates a document manager over the given vector store,
// creating the documents directory if needed.
func NewManager(cfg *config.Config, store *vectorstore.Store, logger *zap.Logger) (*Manager, error) {
	dir := cfg.DocumentsDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	return &Manager{
		documentsDir: dir,
		topK:         cfg.Search.TopK,
		extractor:    extract.NewExtractor(),
		store:        store,
		logger:       logger,
	}, nil
}

// Add extracts, chunks, embeds, and indexes the file at path, then copies it
// into the documents directory. Unsupported extensions surface
// extract.ErrUnsupportedFormat; empty content surfaces
// vectorstore.ErrEmptyContent.
func (m *Manager) Add(ctx context.Context, path, category string) error {
	text, err := m.extractor.Extract(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat document: %w", err)
	}
	// Records are keyed on the stored copy's path, so re-adding a file with
	// the same name overwrites its chunks instead of duplicating them.
	dest := filepath.Join(m.documentsDir, filepath.Base(path))
	rec := &models.DocumentRecord{
		Text: text,
		Meta: models.DocumentMeta{
			FilePath: dest,
			FileName: filepath.Base(path),
			Category: category,
			FileType: strings.ToLower(filepath.Ext(path)),
			FileSize: info.Size(),
		},
	}
	if err := m.store.Insert(ctx, rec); err != nil {
		return err
	}

	if dest != path {
		if err := copyFile(path, dest); err != nil {
			return fmt.Errorf("copy document: %w", err)
		}
	}
	if m.logger != nil {
		m.logger.Info("document added",
			zap.String("file_name", rec.Meta.FileName),
			zap.String("category", category),
		)
	}
	return nil
}

// AddUpload stages uploaded bytes under a throwaway temp directory keeping
// the original file name, then indexes them via Add. The staging directory
// is removed afterwards; the copy in the documents directory survives.
func (m *Manager) AddUpload(ctx context.Context, data []byte, name, category string) error {
	stagingDir := filepath.Join(os.TempDir(), "kioku-upload-"+uuid.New().String()[:8])
	if err := os.MkdirAll(stagingDir, 0700); err != nil {
		return fmt.Errorf("stage upload: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	staged := filepath.Join(stagingDir, filepath.Base(name))
	if err := os.WriteFile(staged, data, 0600); err != nil {
		return fmt.Errorf("stage upload: %w", err)
	}
	return m.Add(ctx, staged, category)
}

// Search runs a semantic query and filters hits by exact category when one
// is given. Results stay in descending similarity order.
func (m *Manager) Search(ctx context.Context, query, category string, topK int) ([]models.DocResult, error) {
	if topK <= 0 {
		topK = m.topK
	}
	hits, err := m.store.Query(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return hits, nil
	}
	filtered := hits[:0]
	for _, h := range hits {
		if h.Category == category {
			filtered = append(filtered, h)
		}
	}
	return filtered, nil
}

// Delete removes a document's chunks from the index and its stored copy.
func (m *Manager) Delete(ctx context.Context, fileName string) error {
	fileName = filepath.Base(fileName)
	if err := m.store.DeleteByFileName(ctx, fileName); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(m.documentsDir, fileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove document copy: %w", err)
	}
	return nil
}

// Stats scans the documents directory: file count, total size, and an
// extension histogram. Recomputed on every call.
func (m *Manager) Stats() models.DocumentStats {
	stats := models.DocumentStats{FileTypes: make(map[string]int)}
	entries, err := os.ReadDir(m.documentsDir)
	if err != nil {
		return stats
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stats.TotalFiles++
		stats.TotalSize += info.Size()
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		stats.FileTypes[ext]++
	}
	return stats
}

// Categories returns the fixed document category list.
func (m *Manager) Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
