// package formatter provides functions to export migration results to
// various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/desertthunder/lidify/internal/tasks"
)

// ResultToCSV converts a migration result to CSV with columns: Artist,
// Status, Matched, LidarrID, AlbumsMonitored, AlbumsTotal, Message
func ResultToCSV(result *tasks.MigrationResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Artist", "Status", "Matched", "LidarrID", "AlbumsMonitored", "AlbumsTotal", "Message"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, outcome := range result.Outcomes {
		record := []string{
			outcome.Artist,
			string(outcome.Status),
			outcome.MatchedName,
			strconv.FormatInt(outcome.LidarrID, 10),
			strconv.Itoa(outcome.AlbumsMonitored),
			strconv.Itoa(outcome.AlbumsTotal),
			outcome.Message,
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

// ResultToMarkdown converts a migration result to a Markdown report.
func ResultToMarkdown(result *tasks.MigrationResult) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Migration Report\n\n")
	buf.WriteString(fmt.Sprintf("**State**: %s\n", result.State))
	buf.WriteString(fmt.Sprintf("**Added**: %d · **Already present**: %d · **Failed**: %d · **Skipped**: %d\n\n", result.Added, result.Exists, result.Failed, result.Skipped))

	buf.WriteString("## Artists\n\n")
	buf.WriteString("| Artist | Status | Matched As | Detail |\n")
	buf.WriteString("|--------|--------|------------|--------|\n")
	for _, outcome := range result.Outcomes {
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", outcome.Artist, outcome.Status, outcome.MatchedName, outcome.Message))
	}

	return buf.Bytes()
}

// ResultToText converts a migration result to plain text.
func ResultToText(result *tasks.MigrationResult) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Migration %s\n", result.State))
	buf.WriteString(fmt.Sprintf("Added: %d  Exists: %d  Failed: %d  Skipped: %d\n\n", result.Added, result.Exists, result.Failed, result.Skipped))

	for i, outcome := range result.Outcomes {
		buf.WriteString(fmt.Sprintf("%d. [%s] %s", i+1, outcome.Status, outcome.Artist))
		if outcome.Message != "" {
			buf.WriteString(fmt.Sprintf(": %s", outcome.Message))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}
