package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.DataDir == "" {
		cfg.DataDir = "kioku/data"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "ollama"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "paraphrase-multilingual"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:11434"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Search.ChunkSize == 0 {
		cfg.Search.ChunkSize = 512
	}
	if cfg.Search.ChunkOverlap == 0 {
		cfg.Search.ChunkOverlap = 50
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = 5
	}
	if cfg.Search.PreviewLength == 0 {
		cfg.Search.PreviewLength = 300
	}
	if cfg.Images.ThumbnailSize == 0 {
		cfg.Images.ThumbnailSize = 200
	}
	if cfg.Images.ThumbnailQuality == 0 {
		cfg.Images.ThumbnailQuality = 85
	}
	if cfg.Images.AllowedTypes == nil {
		cfg.Images.AllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/bmp"}
	}
}
