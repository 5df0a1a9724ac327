package docstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kioku/internal/config"
	"github.com/hyperjump/kioku/internal/embedding"
	"github.com/hyperjump/kioku/internal/extract"
	"github.com/hyperjump/kioku/internal/vectorstore"
)

func newTestManager(t *testing.T) (*Manager, *config.Config) {
	t.Helper()
	cfg := config.Default(t.TempDir())
	store, err := vectorstore.Open(cfg.IndexDir(), embedding.NewMockEmbedder(cfg.Embedding.Dimensions), &cfg.Search)
	if err != nil {
		t.Fatalf("open vector store: %v", err)
	}
	mgr, err := NewManager(cfg, store, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return mgr, cfg
}

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	return path
}

func TestAddAndSearch(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	path := writeDoc(t, "notes.txt", "the quarterly budget review covers travel expenses")
	if err := mgr.Add(ctx, path, "work"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := mgr.Search(ctx, "the quarterly budget review covers travel expenses", "", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	got := results[0]
	if got.FileName != "notes.txt" {
		t.Errorf("FileName = %q, want notes.txt", got.FileName)
	}
	if got.Category != "work" {
		t.Errorf("Category = %q, want work", got.Category)
	}
	if got.FileType != ".txt" {
		t.Errorf("FileType = %q, want .txt", got.FileType)
	}
	if got.Score < 0.99 {
		t.Errorf("Score = %f, want near 1 for identical query", got.Score)
	}
}

func TestAddCopiesIntoDocumentsDir(t *testing.T) {
	mgr, cfg := newTestManager(t)

	path := writeDoc(t, "report.md", "# heading\n\nbody text")
	if err := mgr.Add(context.Background(), path, "general"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	copied := filepath.Join(cfg.DocumentsDir(), "report.md")
	data, err := os.ReadFile(copied)
	if err != nil {
		t.Fatalf("read stored copy: %v", err)
	}
	if string(data) != "# heading\n\nbody text" {
		t.Errorf("stored copy content = %q", data)
	}
}

func TestAddUnsupportedExtension(t *testing.T) {
	mgr, _ := newTestManager(t)

	path := writeDoc(t, "binary.exe", "not a document")
	err := mgr.Add(context.Background(), path, "general")
	if !errors.Is(err, extract.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestAddEmptyContent(t *testing.T) {
	mgr, _ := newTestManager(t)

	path := writeDoc(t, "blank.txt", "   \n\t  ")
	err := mgr.Add(context.Background(), path, "general")
	if !errors.Is(err, vectorstore.ErrEmptyContent) {
		t.Fatalf("err = %v, want ErrEmptyContent", err)
	}
}

func TestAddUpload(t *testing.T) {
	mgr, cfg := newTestManager(t)
	ctx := context.Background()

	err := mgr.AddUpload(ctx, []byte("uploaded meeting minutes from march"), "minutes.txt", "work")
	if err != nil {
		t.Fatalf("AddUpload: %v", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.DocumentsDir(), "minutes.txt")); err != nil {
		t.Fatalf("stored copy missing: %v", err)
	}
	results, err := mgr.Search(ctx, "uploaded meeting minutes from march", "work", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].FileName != "minutes.txt" {
		t.Fatalf("results = %+v, want one hit for minutes.txt", results)
	}
}

func TestReUploadSameNameOverwrites(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	if err := mgr.AddUpload(ctx, []byte("grocery list for the week"), "list.txt", "personal"); err != nil {
		t.Fatalf("AddUpload: %v", err)
	}
	if err := mgr.AddUpload(ctx, []byte("grocery list for the week"), "list.txt", "personal"); err != nil {
		t.Fatalf("second AddUpload: %v", err)
	}

	results, err := mgr.Search(ctx, "grocery list for the week", "", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results after re-upload, want 1", len(results))
	}
}

func TestSearchCategoryFilter(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	if err := mgr.AddUpload(ctx, []byte("hiking trip packing list"), "trip.txt", "personal"); err != nil {
		t.Fatalf("AddUpload: %v", err)
	}
	if err := mgr.AddUpload(ctx, []byte("database indexing lecture notes"), "lecture.txt", "study"); err != nil {
		t.Fatalf("AddUpload: %v", err)
	}

	results, err := mgr.Search(ctx, "hiking trip packing list", "study", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, r := range results {
		if r.Category != "study" {
			t.Errorf("result %q has category %q, want study", r.FileName, r.Category)
		}
	}

	all, err := mgr.Search(ctx, "hiking trip packing list", "", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("unfiltered results = %d, want 2", len(all))
	}
}

func TestDelete(t *testing.T) {
	mgr, cfg := newTestManager(t)
	ctx := context.Background()

	if err := mgr.AddUpload(ctx, []byte("old draft to be removed"), "draft.txt", "general"); err != nil {
		t.Fatalf("AddUpload: %v", err)
	}
	if err := mgr.Delete(ctx, "draft.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.DocumentsDir(), "draft.txt")); !os.IsNotExist(err) {
		t.Errorf("stored copy still present after delete")
	}
	results, err := mgr.Search(ctx, "old draft to be removed", "", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results after delete = %d, want 0", len(results))
	}
}

func TestDeleteMissingCopyIsTolerated(t *testing.T) {
	mgr, _ := newTestManager(t)

	if err := mgr.Delete(context.Background(), "never-added.txt"); err != nil {
		t.Fatalf("Delete of unknown file: %v", err)
	}
}

func TestStats(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	empty := mgr.Stats()
	if empty.TotalFiles != 0 || empty.TotalSize != 0 {
		t.Fatalf("empty stats = %+v", empty)
	}

	if err := mgr.AddUpload(ctx, []byte("alpha"), "a.txt", "general"); err != nil {
		t.Fatalf("AddUpload: %v", err)
	}
	if err := mgr.AddUpload(ctx, []byte("beta beta"), "b.txt", "general"); err != nil {
		t.Fatalf("AddUpload: %v", err)
	}
	if err := mgr.AddUpload(ctx, []byte("# gamma"), "c.md", "general"); err != nil {
		t.Fatalf("AddUpload: %v", err)
	}

	stats := mgr.Stats()
	if stats.TotalFiles != 3 {
		t.Errorf("TotalFiles = %d, want 3", stats.TotalFiles)
	}
	wantSize := int64(len("alpha") + len("beta beta") + len("# gamma"))
	if stats.TotalSize != wantSize {
		t.Errorf("TotalSize = %d, want %d", stats.TotalSize, wantSize)
	}
	if stats.FileTypes[".txt"] != 2 || stats.FileTypes[".md"] != 1 {
		t.Errorf("FileTypes = %v", stats.FileTypes)
	}
}

func TestCategories(t *testing.T) {
	mgr, _ := newTestManager(t)

	got := mgr.Categories()
	want := []string{"general", "work", "study", "personal", "research"}
	if len(got) != len(want) {
		t.Fatalf("Categories = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Categories[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	got[0] = "mutated"
	if mgr.Categories()[0] != "general" {
		t.Errorf("Categories returned shared backing array")
	}
}
