package metastore

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hyperjump/kioku/internal/models"
)

// writeBackingFile creates a real file so Query's existence check passes.
func writeBackingFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("img"), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func testRecord(t *testing.T, dir, name, category string, tags []string, uploaded time.Time) models.ImageRecord {
	t.Helper()
	return models.ImageRecord{
		OriginalName: name,
		Path:         writeBackingFile(t, dir, name),
		Category:     category,
		Tags:         tags,
		Format:       "JPEG",
		Size:         100,
		UploadTime:   uploaded,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meta.json")
	now := time.Now().UTC().Truncate(time.Second)

	s := Open(path, nil)
	rec := testRecord(t, dir, "beach.jpg", "travel", []string{"beach", "sun"}, now)
	rec.Width, rec.Height = 640, 480
	rec.Exif = map[string]string{"Model": "X100"}
	if err := s.Put("ab12_beach.jpg", rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	reopened := Open(path, nil)
	got, err := reopened.Get("ab12_beach.jpg")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", got, rec)
	}
}

func TestOpen_missingFile(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "nope.json"), nil)
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}

func TestOpen_corruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	s := Open(path, nil)
	if s.Len() != 0 {
		t.Errorf("corrupt file should yield empty mapping, got %d records", s.Len())
	}
	// The store still accepts writes afterwards.
	if err := s.Put("x", models.ImageRecord{OriginalName: "x.png"}); err != nil {
		t.Fatalf("Put after corrupt load: %v", err)
	}
}

func TestOpen_unreadableFileWarns(t *testing.T) {
	// A directory at the metadata path makes ReadFile fail with something
	// other than not-exist.
	dir := t.TempDir()
	core, logs := observer.New(zap.WarnLevel)

	s := Open(dir, zap.New(core))
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
	found := false
	for _, entry := range logs.All() {
		if entry.Message == "image metadata unreadable, starting empty" {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning for an unreadable metadata file")
	}
}

func TestStore_DeleteUnknown(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "meta.json"), nil)
	if err := s.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestStore_QueryFilters(t *testing.T) {
	dir := t.TempDir()
	s := Open(filepath.Join(dir, "meta.json"), nil)
	base := time.Now()

	_ = s.Put("1_a.jpg", testRecord(t, dir, "sunset_beach.jpg", "travel", []string{"beach", "travel"}, base))
	_ = s.Put("2_b.jpg", testRecord(t, dir, "downtown.jpg", "travel", []string{"city"}, base.Add(time.Minute)))
	_ = s.Put("3_c.jpg", testRecord(t, dir, "receipt.jpg", "work", []string{"expenses"}, base.Add(2*time.Minute)))

	t.Run("tag filter", func(t *testing.T) {
		got := s.Query("", "", []string{"beach"})
		if len(got) != 1 || got[0].FileID != "1_a.jpg" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("tag filter is case-insensitive", func(t *testing.T) {
		got := s.Query("", "", []string{"BEACH"})
		if len(got) != 1 {
			t.Errorf("got %d results", len(got))
		}
	})

	t.Run("category filter is exact", func(t *testing.T) {
		got := s.Query("", "travel", nil)
		if len(got) != 2 {
			t.Errorf("got %d results", len(got))
		}
		if got := s.Query("", "Travel", nil); len(got) != 0 {
			t.Errorf("category must match exactly, got %d", len(got))
		}
	})

	t.Run("text matches name and tags", func(t *testing.T) {
		if got := s.Query("SUNSET", "", nil); len(got) != 1 {
			t.Errorf("name substring: got %d", len(got))
		}
		if got := s.Query("expenses", "", nil); len(got) != 1 {
			t.Errorf("tag substring: got %d", len(got))
		}
		if got := s.Query("nomatch", "", nil); len(got) != 0 {
			t.Errorf("got %d", len(got))
		}
	})

	t.Run("filters are conjunctive", func(t *testing.T) {
		if got := s.Query("", "work", []string{"beach"}); len(got) != 0 {
			t.Errorf("conjunction violated: %+v", got)
		}
		got := s.Query("sunset", "travel", []string{"beach"})
		if len(got) != 1 || got[0].FileID != "1_a.jpg" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("ordered by upload time descending", func(t *testing.T) {
		got := s.Query("", "", nil)
		if len(got) != 3 {
			t.Fatalf("got %d", len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].UploadTime.After(got[i-1].UploadTime) {
				t.Errorf("results not newest-first at %d", i)
			}
		}
	})
}

func TestStore_QuerySkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	s := Open(filepath.Join(dir, "meta.json"), nil)
	rec := testRecord(t, dir, "gone.jpg", "general", nil, time.Now())
	_ = s.Put("1_gone.jpg", rec)
	if err := os.Remove(rec.Path); err != nil {
		t.Fatal(err)
	}

	if got := s.Query("", "", nil); len(got) != 0 {
		t.Errorf("missing-file record should be skipped, got %+v", got)
	}
	// Stale entry is not auto-deleted.
	if s.Len() != 1 {
		t.Errorf("stale entry removed from store, len=%d", s.Len())
	}
}

func TestStore_CategoriesAndTags(t *testing.T) {
	dir := t.TempDir()
	s := Open(filepath.Join(dir, "meta.json"), nil)
	if got := s.Categories(); len(got) != 1 || got[0] != "general" {
		t.Errorf("empty store categories = %v", got)
	}

	_ = s.Put("1", testRecord(t, dir, "a.jpg", "travel", []string{"beach", "sun"}, time.Now()))
	_ = s.Put("2", testRecord(t, dir, "b.jpg", "work", []string{"sun"}, time.Now()))

	if got := s.Categories(); !reflect.DeepEqual(got, []string{"travel", "work"}) {
		t.Errorf("categories = %v", got)
	}
	if got := s.Tags(); !reflect.DeepEqual(got, []string{"beach", "sun"}) {
		t.Errorf("tags = %v", got)
	}
}

func TestStore_Stats(t *testing.T) {
	dir := t.TempDir()
	s := Open(filepath.Join(dir, "meta.json"), nil)
	_ = s.Put("1", testRecord(t, dir, "a.jpg", "travel", []string{"beach", "travel"}, time.Now()))
	_ = s.Put("2", testRecord(t, dir, "b.jpg", "travel", []string{"city"}, time.Now()))

	stats := s.Stats()
	if stats.TotalImages != 2 {
		t.Errorf("total = %d", stats.TotalImages)
	}
	if stats.TotalSize != 200 {
		t.Errorf("size = %d", stats.TotalSize)
	}
	if stats.Categories["travel"] != 2 {
		t.Errorf("categories = %v", stats.Categories)
	}
	if stats.Formats["JPEG"] != 2 {
		t.Errorf("formats = %v", stats.Formats)
	}
	if stats.Tags["beach"] != 1 || stats.Tags["city"] != 1 {
		t.Errorf("tags = %v", stats.Tags)
	}
}
