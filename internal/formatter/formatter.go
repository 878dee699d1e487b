// package formatter provides functions to export watchlist data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/vaporisers/reelist/internal/models"
	"github.com/vaporisers/reelist/internal/shared"
)

// ExportToCSV converts a list of watchlist entries to CSV format with columns:
// MovieID, Title, Rating, Released, Saved, Poster
func ExportToCSV(entries []models.WatchlistEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"MovieID", "Title", "Rating", "Released", "Saved", "Poster"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range entries {
		record := []string{
			strconv.Itoa(entry.MovieID),
			entry.Title,
			strconv.FormatFloat(entry.VoteAverage, 'f', 1, 64),
			entry.ReleaseDate,
			entry.SavedAt.UTC().Format(time.RFC3339),
			models.PosterURL(entry.PosterPath),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a list of watchlist entries to Markdown format
func ExportToMarkdown(entries []models.WatchlistEntry, owner string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Watchlist\n\n")

	if owner != "" {
		buf.WriteString(fmt.Sprintf("**Owner**: %s\n", owner))
	}
	buf.WriteString(fmt.Sprintf("**Movies**: %d\n\n", len(entries)))

	buf.WriteString("## Movies\n\n")
	for i, entry := range entries {
		yearPart := ""
		if year := entry.Year(); year != "" {
			yearPart = fmt.Sprintf(" (%s)", year)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s [%.1f]\n", i+1, entry.Title, yearPart, entry.VoteAverage))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a list of watchlist entries to plain text format
func ExportToText(entries []models.WatchlistEntry, owner string) ([]byte, error) {
	var buf bytes.Buffer

	if owner != "" {
		buf.WriteString(fmt.Sprintf("Watchlist: %s\n", owner))
	}
	buf.WriteString(fmt.Sprintf("Movies: %d\n\n", len(entries)))

	for i, entry := range entries {
		yearPart := ""
		if year := entry.Year(); year != "" {
			yearPart = fmt.Sprintf(" (%s)", year)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, entry.Title, yearPart))
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of the watchlist entries
func ToMetadataJSON(entries []models.WatchlistEntry) ([]byte, error) {
	return shared.MarshalJSON(entries, true)
}

// ExportResult contains the paths of files created by WriteExport
type ExportResult struct {
	File string
}

// WriteExport exports a watchlist to the given format and writes it to disk.
//
// Supported formats are "csv", "markdown" (or "md"), "text" (or "txt"), and
// "json". The base filename defaults to "watchlist" with a format-appropriate
// extension.
func WriteExport(entries []models.WatchlistEntry, owner, format, baseFilepath string) (*ExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "watchlist"
	}

	var (
		data []byte
		ext  string
		err  error
	)

	switch format {
	case "csv":
		data, err = ExportToCSV(entries)
		ext = ".csv"
	case "markdown", "md":
		data, err = ExportToMarkdown(entries, owner)
		ext = ".md"
	case "text", "txt":
		data, err = ExportToText(entries, owner)
		ext = ".txt"
	case "json":
		data, err = ToMetadataJSON(entries)
		ext = ".json"
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s export: %w", format, err)
	}

	file := baseFilepath + ext
	if err := os.WriteFile(file, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write export file: %w", err)
	}

	return &ExportResult{File: file}, nil
}
