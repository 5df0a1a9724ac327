// Package config provides configuration loading and structs for Kioku.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	DataDir   string          `yaml:"data_dir"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Images    ImageConfig     `yaml:"images"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is one of "ollama", "onnx", "mock".
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// SearchConfig holds chunking and query settings.
type SearchConfig struct {
	ChunkSize     int `yaml:"chunk_size"`
	ChunkOverlap  int `yaml:"chunk_overlap"`
	TopK          int `yaml:"top_k"`
	PreviewLength int `yaml:"preview_length"`
}

// ImageConfig holds thumbnail and upload settings.
type ImageConfig struct {
	ThumbnailSize    int      `yaml:"thumbnail_size"`
	ThumbnailQuality int      `yaml:"thumbnail_quality"`
	AllowedTypes     []string `yaml:"allowed_types"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.DataDir = expandPath(cfg.DataDir, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}

	return &cfg, nil
}

// Default returns a config with all defaults applied and dataDir as the data root.
// Used when no config file is present.
func Default(dataDir string) *Config {
	cfg := &Config{DataDir: dataDir}
	ApplyDefaults(cfg)
	return cfg
}

// DocumentsDir returns the directory holding raw copies of ingested documents.
func (c *Config) DocumentsDir() string { return filepath.Join(c.DataDir, "documents") }

// ImagesDir returns the directory holding raw image files.
func (c *Config) ImagesDir() string { return filepath.Join(c.DataDir, "images") }

// ThumbnailsDir returns the directory holding generated thumbnails.
func (c *Config) ThumbnailsDir() string { return filepath.Join(c.DataDir, "thumbnails") }

// MetadataPath returns the path of the image metadata JSON document.
func (c *Config) MetadataPath() string { return filepath.Join(c.DataDir, "image_metadata.json") }

// IndexDir returns the directory holding the persistent vector collection.
func (c *Config) IndexDir() string { return filepath.Join(c.DataDir, "index") }

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
