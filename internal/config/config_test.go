package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
data_dir: ./data
embedding:
  provider: mock
  dimensions: 8
search:
  chunk_size: 100
  chunk_overlap: 20
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if cfg.DataDir != filepath.Join(dir, "data") {
		t.Errorf("data_dir not expanded relative to config dir: %s", cfg.DataDir)
	}
	if cfg.Embedding.Provider != "mock" || cfg.Embedding.Dimensions != 8 {
		t.Errorf("embedding config not applied: %+v", cfg.Embedding)
	}
	if cfg.Search.ChunkSize != 100 || cfg.Search.ChunkOverlap != 20 {
		t.Errorf("search config not applied: %+v", cfg.Search)
	}
	// Unset values fall back to defaults.
	if cfg.Search.TopK != 5 || cfg.Search.PreviewLength != 300 {
		t.Errorf("search defaults not applied: %+v", cfg.Search)
	}
	if cfg.Images.ThumbnailSize != 200 || cfg.Images.ThumbnailQuality != 85 {
		t.Errorf("image defaults not applied: %+v", cfg.Images)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default("/tmp/kioku-data")
	if cfg.Embedding.Provider != "ollama" {
		t.Errorf("default provider = %s", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Model != "paraphrase-multilingual" {
		t.Errorf("default model = %s", cfg.Embedding.Model)
	}
	if got := cfg.MetadataPath(); got != "/tmp/kioku-data/image_metadata.json" {
		t.Errorf("MetadataPath = %s", got)
	}
	if got := cfg.IndexDir(); got != "/tmp/kioku-data/index" {
		t.Errorf("IndexDir = %s", got)
	}
	if len(cfg.Images.AllowedTypes) != 4 {
		t.Errorf("allowed types = %v", cfg.Images.AllowedTypes)
	}
}
