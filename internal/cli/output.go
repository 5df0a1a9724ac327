// Package cli provides output formatting for the Kioku command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/hyperjump/kioku/internal/models"
	"github.com/hyperjump/kioku/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteSearchResults writes unified search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, results *models.SearchResults, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	default:
		writeSearchResultsText(w, results)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, results *models.SearchResults) {
	fmt.Fprintf(w, "\nFound %d documents, %d images\n\n", len(results.Documents), len(results.Images))

	if len(results.Documents) > 0 {
		fmt.Fprintln(w, "--- Documents ---")
		for i, doc := range results.Documents {
			fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
			fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", i+1, doc.Score)
			fmt.Fprintf(w, "File: %s | Category: %s | Type: %s | Size: %s\n",
				doc.FileName, doc.Category, doc.FileType, utils.FormatFileSize(doc.FileSize))
			fmt.Fprintf(w, "\n%s\n\n", doc.Content)
		}
	}

	if len(results.Images) > 0 {
		fmt.Fprintln(w, "--- Images ---")
		for _, img := range results.Images {
			fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
			fmt.Fprintf(w, "ID: %s | %s | Category: %s\n", img.FileID, img.OriginalName, img.Category)
			fmt.Fprintf(w, "Format: %s | %dx%d | Size: %s | Uploaded: %s\n",
				img.Format, img.Width, img.Height,
				utils.FormatFileSize(img.Size), img.UploadTime.Format("2006-01-02 15:04"))
			if len(img.Tags) > 0 {
				fmt.Fprintf(w, "Tags: %v\n", img.Tags)
			}
			fmt.Fprintln(w)
		}
	}
}

// WriteStats writes aggregated statistics to w in the given format.
func WriteStats(w io.Writer, stats models.Stats, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	default:
		writeStatsText(w, stats)
		return nil
	}
}

func writeStatsText(w io.Writer, stats models.Stats) {
	fmt.Fprintf(w, "\nTotal items: %d\n\n", stats.TotalItems)

	fmt.Fprintln(w, "--- Documents ---")
	fmt.Fprintf(w, "Files: %d | Size: %s\n", stats.Documents.TotalFiles, utils.FormatFileSize(stats.Documents.TotalSize))
	writeHistogram(w, stats.Documents.FileTypes)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Images ---")
	fmt.Fprintf(w, "Images: %d | Size: %s\n", stats.Images.TotalImages, utils.FormatFileSize(stats.Images.TotalSize))
	fmt.Fprintln(w, "By category:")
	writeHistogram(w, stats.Images.Categories)
	fmt.Fprintln(w, "By format:")
	writeHistogram(w, stats.Images.Formats)
	if len(stats.Images.Tags) > 0 {
		fmt.Fprintln(w, "Top tags:")
		writeHistogram(w, stats.Images.Tags)
	}
}

func writeHistogram(w io.Writer, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %d\n", k, counts[k])
	}
}
