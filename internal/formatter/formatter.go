// package formatter renders account rosters and event attendee lists in various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/ytparty/internal/models"
)

// Format names accepted by [Export].
const (
	CSV      = "csv"
	Markdown = "md"
	Text     = "txt"
)

// Roster is a snapshot of accounts with the time it was taken.
type Roster struct {
	Accounts    []models.Account
	GeneratedAt time.Time
}

// ExportToCSV converts a Roster to CSV format with columns: ID, Alias, Role, Created, Sessions, Connected, Rating
func ExportToCSV(roster *Roster) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Alias", "Role", "Created", "Sessions", "Connected", "Rating"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range roster.Accounts {
		record := []string{
			a.ID,
			a.DisplayName(),
			string(a.Role),
			formatDate(a.CreatedAt),
			strconv.Itoa(a.Stats.TotalSessions),
			strconv.FormatInt(a.Stats.TotalTimeConnected, 10),
			strconv.FormatFloat(a.Stats.AverageRating, 'f', 1, 64),
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

// ExportToMarkdown converts a Roster to a Markdown table
func ExportToMarkdown(roster *Roster) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Accounts\n\n")
	buf.WriteString(fmt.Sprintf("**Total**: %d\n", len(roster.Accounts)))
	if !roster.GeneratedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Generated**: %s\n", roster.GeneratedAt.Format(time.RFC3339)))
	}
	buf.WriteString("\n| ID | Alias | Role | Sessions | Connected |\n")
	buf.WriteString("|---|---|---|---|---|\n")

	for _, a := range roster.Accounts {
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %s |\n",
			a.ID, a.DisplayName(), a.Role, a.Stats.TotalSessions, FormatDuration(a.Stats.TotalTimeConnected)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Roster to plain text format
func ExportToText(roster *Roster) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Accounts: %d\n\n", len(roster.Accounts)))
	for i, a := range roster.Accounts {
		buf.WriteString(fmt.Sprintf("%d. %s (%s) - %s\n", i+1, a.DisplayName(), a.ID, a.Role))
	}

	return buf.Bytes(), nil
}

// AttendeesToText lists the attendees of an event, one per line.
func AttendeesToText(eventID string, attendees []string) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Event: %s\nAttendees: %d\n", eventID, len(attendees)))
	for i, id := range attendees {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, id))
	}

	return buf.Bytes()
}

// Export renders roster in the named format.
func Export(roster *Roster, format string) ([]byte, error) {
	switch format {
	case CSV:
		return ExportToCSV(roster)
	case Markdown:
		return ExportToMarkdown(roster)
	case Text, "":
		return ExportToText(roster)
	default:
		return nil, fmt.Errorf("unsupported format %q (want csv, md or txt)", format)
	}
}

// WriteExport renders roster in the named format and writes it to path.
//
// Defaults to accounts.{format} in the working directory.
func WriteExport(roster *Roster, format, path string) (string, error) {
	if format == "" {
		format = Text
	}

	data, err := Export(roster, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = "accounts." + format
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

// FormatDuration renders a number of seconds as h:mm:ss, or m:ss under an hour.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
