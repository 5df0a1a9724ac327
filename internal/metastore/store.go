// Package metastore persists image records as a single JSON document and
// answers filtered queries over them.
package metastore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/kioku/internal/models"
)

// ErrNotFound is returned when an operation names an unknown file ID.
var ErrNotFound = errors.New("image record not found")

// Store is a durable keyed mapping file_id -> ImageRecord. Every mutation
// rewrites the whole backing file (write-temp-then-rename, so a crash never
// leaves a half-written mapping). Single-process, single logical writer.
type Store struct {
	path    string
	logger  *zap.Logger
	mu      sync.Mutex
	records map[string]models.ImageRecord
}

// Open loads the mapping at path. A missing or corrupt file yields an empty
// mapping; corruption is logged as a warning, never returned as an error.
func Open(path string, logger *zap.Logger) *Store {
	s := &Store{
		path:    path,
		logger:  logger,
		records: make(map[string]models.ImageRecord),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) && logger != nil {
			logger.Warn("image metadata unreadable, starting empty",
				zap.String("path", path), zap.Error(err))
		}
		return s
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		if logger != nil {
			logger.Warn("image metadata corrupt, starting empty",
				zap.String("path", path), zap.Error(err))
		}
		s.records = make(map[string]models.ImageRecord)
	}
	return s
}

// Put stores a record under fileID and persists the full mapping.
func (s *Store) Put(fileID string, rec models.ImageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[fileID] = rec
	return s.save()
}

// Delete removes the record for fileID and persists the full mapping.
// Returns ErrNotFound for unknown IDs.
func (s *Store) Delete(fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[fileID]; !ok {
		return ErrNotFound
	}
	delete(s.records, fileID)
	return s.save()
}

// Get returns the record for fileID.
func (s *Store) Get(fileID string) (models.ImageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[fileID]
	if !ok {
		return models.ImageRecord{}, ErrNotFound
	}
	return rec, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Query returns records matching all given filters, newest upload first:
//   - category, when non-empty, must match exactly;
//   - tags, when non-empty, must share at least one tag (case-insensitive);
//   - text, when non-empty, must be a case-insensitive substring of the
//     original name joined with the record's tags.
//
// Records whose backing file no longer exists on disk are skipped, but the
// stale entries are kept in the store.
func (s *Store) Query(text, category string, tags []string) []models.ImageResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]models.ImageResult, 0)
	for id, rec := range s.records {
		if category != "" && rec.Category != category {
			continue
		}
		if len(tags) > 0 && !anyTagMatches(tags, rec.Tags) {
			continue
		}
		if text != "" {
			haystack := strings.ToLower(rec.OriginalName + " " + strings.Join(rec.Tags, " "))
			if !strings.Contains(haystack, strings.ToLower(text)) {
				continue
			}
		}
		if _, err := os.Stat(rec.Path); err != nil {
			if s.logger != nil {
				s.logger.Warn("skipping image with missing file",
					zap.String("file_id", id), zap.String("path", rec.Path))
			}
			continue
		}
		results = append(results, models.ImageResult{FileID: id, ImageRecord: rec})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].UploadTime.After(results[j].UploadTime)
	})
	return results
}

// Categories returns the distinct categories of stored records.
// Defaults to ["general"] for an empty store.
func (s *Store) Categories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[string]struct{})
	for _, rec := range s.records {
		set[rec.Category] = struct{}{}
	}
	if len(set) == 0 {
		return []string{"general"}
	}
	return sortedKeys(set)
}

// Tags returns the distinct tags of stored records, sorted.
func (s *Store) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := make(map[string]struct{})
	for _, rec := range s.records {
		for _, tag := range rec.Tags {
			set[tag] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// Stats recomputes image statistics from the full mapping.
func (s *Store) Stats() models.ImageStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.ImageStats{
		TotalImages: len(s.records),
		Categories:  make(map[string]int),
		Formats:     make(map[string]int),
		Tags:        make(map[string]int),
	}
	for _, rec := range s.records {
		stats.Categories[rec.Category]++
		format := rec.Format
		if format == "" {
			format = "unknown"
		}
		stats.Formats[format]++
		stats.TotalSize += rec.Size
		for _, tag := range rec.Tags {
			stats.Tags[tag]++
		}
	}
	return stats
}

// save writes the full mapping to a temp file and renames it into place.
// Callers must hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace metadata: %w", err)
	}
	return nil
}

func anyTagMatches(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(w, h) {
				return true
			}
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
