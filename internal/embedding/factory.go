package embedding

import (
	"fmt"

	"github.com/hyperjump/kioku/internal/config"
)

// NewFromConfig constructs the embedder selected by cfg.Provider:
// "ollama" (default), "onnx" (requires CGO build), or "mock" (tests).
func NewFromConfig(cfg *config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaEmbedder(cfg.Model, cfg.Dimensions, cfg.CacheSize, cfg.BaseURL), nil
	case "onnx":
		return NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
	case "mock":
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
