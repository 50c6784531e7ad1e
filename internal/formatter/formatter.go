// package formatter exports build reports to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/scrapify/internal/tasks"
)

// Format names a report format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// FormatForPath picks the report format from the file extension. Unknown extensions get plain text.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatText
	}
}

// status describes the search outcome of a term
func status(t tasks.TermResult) string {
	switch {
	case t.Err != nil:
		return "failed"
	case t.Found():
		return "found"
	default:
		return "missing"
	}
}

func albumFields(t tasks.TermResult) (name, artists string, tracks int) {
	if t.Result == nil {
		return "", "", 0
	}
	if t.Result.Album != nil {
		name = t.Result.Album.Name
		artists = strings.Join(t.Result.Album.Artists, ", ")
	}
	return name, artists, len(t.Result.Tracks)
}

// ExportToCSV converts a BuildResult to CSV format with columns: Term, Status, Album, Artists, Tracks, Error
func ExportToCSV(result *tasks.BuildResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Term", "Status", "Album", "Artists", "Tracks", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, term := range result.Terms {
		name, artists, tracks := albumFields(term)
		errText := ""
		if term.Err != nil {
			errText = term.Err.Error()
		}

		record := []string{term.Term, status(term), name, artists, strconv.Itoa(tracks), errText}
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

// ExportToMarkdown converts a BuildResult to Markdown with a summary and a section per outcome.
func ExportToMarkdown(result *tasks.BuildResult) ([]byte, error) {
	var buf bytes.Buffer

	title := "Scrapify report"
	if result.Playlist != nil && result.Playlist.Name != "" {
		title = result.Playlist.Name
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)

	if result.Playlist != nil {
		fmt.Fprintf(&buf, "**Playlist**: [%s](%s)\n", result.Playlist.ID, result.URL())
	}
	fmt.Fprintf(&buf, "**Searched**: %d\n", result.Searched())
	fmt.Fprintf(&buf, "**Found**: %d\n", result.Found())
	fmt.Fprintf(&buf, "**Missing**: %d\n", result.Missing())
	fmt.Fprintf(&buf, "**Tracks added**: %d of %d\n\n", result.TracksAdded, result.TracksFound)

	found, missing := []string{}, []string{}
	for _, term := range result.Terms {
		name, artists, tracks := albumFields(term)
		switch status(term) {
		case "found":
			found = append(found, fmt.Sprintf("%s: %s - %s [%d tracks]", term.Term, artists, name, tracks))
		case "failed":
			missing = append(missing, fmt.Sprintf("%s (error: %v)", term.Term, term.Err))
		default:
			missing = append(missing, term.Term)
		}
	}

	buf.WriteString("## Found\n\n")
	for i, line := range found {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, line)
	}

	if len(missing) > 0 {
		buf.WriteString("\n## Missing\n\n")
		for _, line := range missing {
			fmt.Fprintf(&buf, "- %s\n", line)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a BuildResult to plain text format
func ExportToText(result *tasks.BuildResult) ([]byte, error) {
	var buf bytes.Buffer

	if result.Playlist != nil {
		fmt.Fprintf(&buf, "Playlist: %s\n", result.URL())
	}
	fmt.Fprintf(&buf, "Searched: %d, found: %d, missing: %d\n", result.Searched(), result.Found(), result.Missing())
	fmt.Fprintf(&buf, "Tracks added: %d\n\n", result.TracksAdded)

	for i, term := range result.Terms {
		fmt.Fprintf(&buf, "%d. [%s] %s\n", i+1, status(term), term.Term)
	}

	return buf.Bytes(), nil
}

// Export renders result in the given format.
func Export(result *tasks.BuildResult, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(result)
	case FormatMarkdown:
		return ExportToMarkdown(result)
	default:
		return ExportToText(result)
	}
}

// WriteReport writes result to path in the format its extension names.
func WriteReport(result *tasks.BuildResult, path string) error {
	if path == "" {
		return fmt.Errorf("empty report path")
	}

	data, err := Export(result, FormatForPath(path))
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
