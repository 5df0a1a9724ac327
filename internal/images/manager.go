// Package images ingests, stores, and deletes images and their metadata.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/hyperjump/kioku/internal/config"
	"github.com/hyperjump/kioku/internal/fileid"
	"github.com/hyperjump/kioku/internal/metastore"
	"github.com/hyperjump/kioku/internal/models"
)

// ErrUnsupportedType is returned when an upload's content type is not in the allow-list.
var ErrUnsupportedType = errors.New("unsupported image type")

// Manager handles image ingestion: content-type checks, deterministic file
// IDs, thumbnail generation, EXIF/dimension extraction, and metadata records.
type Manager struct {
	imagesDir    string
	thumbsDir    string
	thumbSize    int
	thumbQuality int
	allowedTypes map[string]struct{}
	store        *metastore.Store
	logger       *zap.Logger
}

// NewManager creates an image manager over the given metadata store,
// creating the image and thumbnail directories if needed.
func NewManager(cfg *config.Config, store *metastore.Store, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		imagesDir:    cfg.ImagesDir(),
		thumbsDir:    cfg.ThumbnailsDir(),
		thumbSize:    cfg.Images.ThumbnailSize,
		thumbQuality: cfg.Images.ThumbnailQuality,
		allowedTypes: make(map[string]struct{}, len(cfg.Images.AllowedTypes)),
		store:        store,
		logger:       logger,
	}
	for _, t := range cfg.Images.AllowedTypes {
		m.allowedTypes[t] = struct{}{}
	}
	for _, dir := range []string{m.imagesDir, m.thumbsDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return m, nil
}

// Add stores an uploaded image and its metadata record, returning the file ID.
// The ID is deterministic for identical content and name, so re-uploading the
// same image overwrites its record in place rather than duplicating it.
// Returns ErrUnsupportedType for content types outside the allow-list.
func (m *Manager) Add(data []byte, originalName, contentType, category string, tags []string) (string, error) {
	if _, ok := m.allowedTypes[contentType]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	fileID := fileid.ImageFileID(data, originalName)
	destPath := filepath.Join(m.imagesDir, fileID)
	if err := os.WriteFile(destPath, data, 0600); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}

	rec := models.ImageRecord{
		OriginalName:  filepath.Base(originalName),
		Path:          destPath,
		ThumbnailPath: m.generateThumbnail(data, fileID, destPath),
		Category:      category,
		Tags:          tags,
		Size:          int64(len(data)),
		UploadTime:    time.Now(),
	}
	if tags == nil {
		rec.Tags = []string{}
	}

	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		rec.Width, rec.Height = cfg.Width, cfg.Height
		rec.Format = strings.ToUpper(format)
	} else if m.logger != nil {
		m.logger.Warn("image dimensions unavailable",
			zap.String("file_id", fileID), zap.Error(err))
	}
	rec.Exif = extractExif(data)

	if err := m.store.Put(fileID, rec); err != nil {
		return "", fmt.Errorf("store image record: %w", err)
	}
	return fileID, nil
}

// generateThumbnail writes a bounded JPEG preview and returns its path.
// On any failure it falls back to the original image path.
func (m *Manager) generateThumbnail(data []byte, fileID, fallback string) string {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("thumbnail decode failed", zap.String("file_id", fileID), zap.Error(err))
		}
		return fallback
	}
	thumb := imaging.Fit(img, m.thumbSize, m.thumbSize, imaging.Lanczos)
	ext := filepath.Ext(fileID)
	thumbPath := filepath.Join(m.thumbsDir, strings.TrimSuffix(fileID, ext)+"_thumb.jpg")
	if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(m.thumbQuality)); err != nil {
		if m.logger != nil {
			m.logger.Warn("thumbnail save failed", zap.String("path", thumbPath), zap.Error(err))
		}
		return fallback
	}
	return thumbPath
}

// Delete removes the record plus the raw and thumbnail files.
// Returns metastore.ErrNotFound for unknown IDs.
func (m *Manager) Delete(fileID string) error {
	rec, err := m.store.Get(fileID)
	if err != nil {
		return err
	}
	if err := os.Remove(rec.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image: %w", err)
	}
	if rec.ThumbnailPath != "" && rec.ThumbnailPath != rec.Path {
		if err := os.Remove(rec.ThumbnailPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove thumbnail: %w", err)
		}
	}
	return m.store.Delete(fileID)
}

// Search returns image records matching the given filters, newest first.
func (m *Manager) Search(text, category string, tags []string) []models.ImageResult {
	return m.store.Query(text, category, tags)
}

// Stats returns image statistics recomputed from the metadata store.
func (m *Manager) Stats() models.ImageStats {
	return m.store.Stats()
}

// Categories returns the distinct categories in use.
func (m *Manager) Categories() []string {
	return m.store.Categories()
}

// Tags returns the distinct tags in use.
func (m *Manager) Tags() []string {
	return m.store.Tags()
}
