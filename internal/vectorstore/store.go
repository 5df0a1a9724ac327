package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/hyperjump/kioku/internal/config"
	"github.com/hyperjump/kioku/internal/embedding"
	"github.com/hyperjump/kioku/internal/fileid"
	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/pkg/utils"
)

// collectionName is the single chromem collection holding all document chunks.
const collectionName = "documents"

// ErrEmptyContent is returned by Insert when a document has no extractable text.
var ErrEmptyContent = errors.New("document content is empty")

// Store is a persistent vector index over document chunks, backed by a
// chromem-go collection on disk. Re-inserting a file path replaces all of
// its chunks.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	chunker    *Chunker
	previewLen int
	logger     *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open opens (or creates) the persistent collection under dir, configured
// with the given embedder and chunking settings. Safe to call for distinct
// stores (tests); production code goes through Shared.
func Open(dir string, embedder embedding.Embedder, cfg *config.SearchConfig, opts ...Option) (*Store, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open vector db: %w", err)
	}
	col, err := db.GetOrCreateCollection(collectionName, nil, embedding.ToChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	s := &Store{
		db:         db,
		collection: col,
		chunker:    NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		previewLen: cfg.PreviewLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

var (
	sharedOnce  sync.Once
	sharedStore *Store
	sharedErr   error
)

// Shared returns the process-wide store, opening it on the first call.
// Later calls — concurrent ones included — observe the same handle and the
// same open error; their arguments are ignored. This is the lazy-singleton
// contract for the index: exactly one collection handle per process.
func Shared(dir string, embedder embedding.Embedder, cfg *config.SearchConfig, opts ...Option) (*Store, error) {
	sharedOnce.Do(func() {
		sharedStore, sharedErr = Open(dir, embedder, cfg, opts...)
	})
	return sharedStore, sharedErr
}

// Insert chunks, embeds, and stores a document record, replacing any chunks
// previously stored for the same file path so stale text from a longer prior
// version cannot survive. Returns ErrEmptyContent when the record's text is
// empty or whitespace-only. Embedding and storage failures come back wrapped.
func (s *Store) Insert(ctx context.Context, rec *models.DocumentRecord) error {
	if strings.TrimSpace(rec.Text) == "" {
		return ErrEmptyContent
	}
	if err := s.collection.Delete(ctx, map[string]string{"file_path": rec.Meta.FilePath}, nil); err != nil {
		return fmt.Errorf("remove prior chunks: %w", err)
	}
	chunks := s.chunker.Chunk(rec.Text)
	docID := fileid.DocID(rec.Meta.FilePath)
	meta := metaToMap(rec.Meta)

	docs := make([]chromem.Document, len(chunks))
	for i, text := range chunks {
		docs[i] = chromem.Document{
			ID:       fmt.Sprintf("%s_%d", docID, i),
			Content:  text,
			Metadata: meta,
		}
	}
	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	if s.logger != nil {
		s.logger.Debug("document indexed",
			zap.String("file_name", rec.Meta.FileName),
			zap.Int("chunks", len(chunks)),
		)
	}
	return nil
}

// Query embeds text and returns up to topK chunks by descending cosine
// similarity. Chunk previews are truncated to the configured length with an
// ellipsis marker. An empty collection yields an empty result, not an error.
// Equal-score chunks are ordered by chunk ID so identical queries return
// identical orderings; chromem scores chunks concurrently and would
// otherwise shuffle ties between calls.
func (s *Store) Query(ctx context.Context, text string, topK int) ([]models.DocResult, error) {
	count := s.collection.Count()
	if count == 0 {
		return []models.DocResult{}, nil
	}
	// chromem requires nResults <= collection size.
	if topK <= 0 || topK > count {
		topK = count
	}
	hits, err := s.collection.Query(ctx, text, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ID < hits[j].ID
	})

	results := make([]models.DocResult, len(hits))
	for i, h := range hits {
		meta := mapToMeta(h.Metadata)
		results[i] = models.DocResult{
			Content:  utils.Truncate(h.Content, s.previewLen),
			FileName: meta.FileName,
			Category: meta.Category,
			FileType: meta.FileType,
			FileSize: meta.FileSize,
			Score:    float64(h.Similarity),
		}
	}
	return results, nil
}

// DeleteByFileName removes all chunks whose metadata carries the given file name.
func (s *Store) DeleteByFileName(ctx context.Context, fileName string) error {
	if err := s.collection.Delete(ctx, map[string]string{"file_name": fileName}, nil); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

// Count returns the number of stored chunks.
func (s *Store) Count() int {
	return s.collection.Count()
}

// metaToMap flattens document metadata into the string map chromem stores.
func metaToMap(m models.DocumentMeta) map[string]string {
	return map[string]string{
		"file_path": m.FilePath,
		"file_name": m.FileName,
		"category":  m.Category,
		"file_type": m.FileType,
		"file_size": strconv.FormatInt(m.FileSize, 10),
	}
}

// mapToMeta converts a chromem metadata map back to document metadata.
func mapToMeta(m map[string]string) models.DocumentMeta {
	size, _ := strconv.ParseInt(m["file_size"], 10, 64)
	return models.DocumentMeta{
		FilePath: m["file_path"],
		FileName: m["file_name"],
		Category: m["category"],
		FileType: m["file_type"],
		FileSize: size,
	}
}
