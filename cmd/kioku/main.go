// Package main is the Kioku CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/kioku/internal/cli"
	"github.com/hyperjump/kioku/internal/config"
	"github.com/hyperjump/kioku/internal/docstore"
	"github.com/hyperjump/kioku/internal/embedding"
	"github.com/hyperjump/kioku/internal/images"
	"github.com/hyperjump/kioku/internal/metastore"
	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/internal/search"
	"github.com/hyperjump/kioku/internal/vectorstore"
	"github.com/hyperjump/kioku/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kioku/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. A missing default config falls back to built-in defaults with
// data under ~/.kioku.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); statErr != nil {
			home, homeErr := os.UserHomeDir()
			if homeErr != nil {
				return nil, "", fmt.Errorf("resolve home directory: %w", homeErr)
			}
			return config.Default(filepath.Join(home, ".kioku")), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "add":
		runAdd()
	case "add-image":
		runAddImage()
	case "search":
		runSearch()
	case "delete":
		runDelete()
	case "delete-image":
		runDeleteImage()
	case "stats":
		runStats()
	case "version", "--version", "-v":
		fmt.Printf("kioku version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Embedder embedding.Embedder
	Store    *vectorstore.Store
	Docs     *docstore.Manager
	Images   *images.Manager
	Engine   *search.Engine
}

func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	embedder, err := embedding.NewFromConfig(&cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("initialize embedder: %w", err)
	}

	store, err := vectorstore.Shared(cfg.IndexDir(), embedder, &cfg.Search, vectorstore.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("initialize vector store: %w", err)
	}

	docs, err := docstore.NewManager(cfg, store, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize document manager: %w", err)
	}

	imgs, err := images.NewManager(cfg, metastore.Open(cfg.MetadataPath(), logger), logger)
	if err != nil {
		return nil, fmt.Errorf("initialize image manager: %w", err)
	}

	return &Components{
		Embedder: embedder,
		Store:    store,
		Docs:     docs,
		Images:   imgs,
		Engine:   search.NewEngine(docs, imgs, logger),
	}, nil
}

// setup loads config, builds the logger, and initializes components. Exits on
// failure; callers defer the returned cleanup.
func setup(configPath string) (*config.Config, *Components, func()) {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	if resolvedPath != "" {
		logger.Debug("config loaded", zap.String("config_path", resolvedPath))
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, components, func() {
		components.Close()
		_ = logger.Sync()
	}
}

func runAdd() {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	category := fs.String("category", "general", "document category")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kioku add [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	_, components, cleanup := setup(*configPath)
	defer cleanup()

	if err := components.Docs.Add(context.Background(), path, *category); err != nil {
		fmt.Fprintf(os.Stderr, "Add failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document added: %s (category: %s)\n", filepath.Base(path), *category)
}

func runAddImage() {
	fs := flag.NewFlagSet("add-image", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	category := fs.String("category", "general", "image category")
	tagsFlag := fs.String("tags", "", "comma-separated tags")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kioku add-image [flags] <image-file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read image: %v\n", err)
		os.Exit(1)
	}
	var tags []string
	for _, t := range strings.Split(*tagsFlag, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	_, components, cleanup := setup(*configPath)
	defer cleanup()

	contentType := http.DetectContentType(data)
	fileID, err := components.Images.Add(data, filepath.Base(path), contentType, *category, tags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Add image failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Image added: %s\n", fileID)
}

// buildSearchQuery joins all positional args with spaces so multi-word
// queries work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the
// query to the front of the slice so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	scopeFlag := fs.String("scope", "all", "search scope: all, documents, or images")
	category := fs.String("category", "", "filter results by exact category")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: kioku search [flags] <query>")
		os.Exit(1)
	}
	query := buildSearchQuery(fs.Args())
	if query == "" {
		fmt.Println("Usage: kioku search [flags] <query>")
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	scope := models.Scope(*scopeFlag)
	if !scope.Valid() {
		fmt.Printf("Unknown scope %q; use all, documents, or images\n", *scopeFlag)
		os.Exit(1)
	}

	_, components, cleanup := setup(*configPath)
	defer cleanup()

	results, err := components.Engine.Search(context.Background(), query, scope, *category)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, results, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kioku delete [flags] <file-name>")
		os.Exit(1)
	}
	fileName := fs.Arg(0)

	_, components, cleanup := setup(*configPath)
	defer cleanup()

	if err := components.Docs.Delete(context.Background(), fileName); err != nil {
		fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document deleted: %s\n", fileName)
}

func runDeleteImage() {
	fs := flag.NewFlagSet("delete-image", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kioku delete-image [flags] <file-id>")
		os.Exit(1)
	}
	fileID := fs.Arg(0)

	_, components, cleanup := setup(*configPath)
	defer cleanup()

	if err := components.Images.Delete(fileID); err != nil {
		fmt.Fprintf(os.Stderr, "Delete image failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Image deleted: %s\n", fileID)
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	_, components, cleanup := setup(*configPath)
	defer cleanup()

	if err := cli.WriteStats(os.Stdout, components.Engine.Stats(), format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`kioku - personal document and image memory with semantic search

Usage:
  kioku add [flags] <file>            Index a document (.txt .md .pdf .docx .xlsx)
  kioku add-image [flags] <file>      Store an image with metadata
  kioku search [flags] <query>        Search documents and images
  kioku delete [flags] <file-name>    Delete a document and its index entries
  kioku delete-image [flags] <id>     Delete a stored image by file ID
  kioku stats [flags]                 Show collection statistics
  kioku version                       Show version
  kioku help                          Show this help

Add Flags:
  --config string     Config file path (default: /usr/local/etc/kioku/config.yaml)
  --category string   Document category: general, work, study, personal, research (default: general)

Add-Image Flags:
  --config string     Config file path
  --category string   Image category (default: general)
  --tags string       Comma-separated tags, e.g. "beach,sunset"

Search Flags:
  --config string     Config file path
  --scope string      all, documents, or images (default: all)
  --category string   Filter results by exact category
  --output string     Output format: text or json (default: text)

Stats Flags:
  --config string     Config file path
  --output string     Output format: text or json (default: text)

Examples:
  kioku add --category work report.pdf
  kioku add-image --category personal --tags "beach,sunset" photo.jpg
  kioku search quarterly budget
  kioku search --scope images --category personal beach
  kioku search --output json "machine learning"
  kioku delete report.pdf
  kioku delete-image ab12cd34_photo.jpg
  kioku stats --output json`)
}
