// Package export writes detection results for spreadsheets and other tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kilianp07/skyops/core/model"
)

// Header is the CSV column order.
var Header = []string{"id", "type", "severity", "affected_entity", "affected_missions", "description", "suggestions", "created_at"}

// WriteJSON writes the conflicts to w in JSON format.
func WriteJSON(w io.Writer, conflicts []model.Conflict) error {
	if conflicts == nil {
		conflicts = []model.Conflict{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(conflicts)
}

// WriteCSV writes one row per conflict. List cells are joined with "; ".
func WriteCSV(w io.Writer, conflicts []model.Conflict) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, c := range conflicts {
		rec := []string{
			c.ID,
			string(c.Type),
			string(c.Severity),
			c.AffectedEntity,
			strings.Join(c.AffectedMissions, "; "),
			c.Description,
			strings.Join(c.Suggestions, "; "),
			c.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ContentType returns the MIME type for format, or an error when the format
// is not supported.
func ContentType(format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return "application/json", nil
	case "csv":
		return "text/csv", nil
	case "html":
		return "text/html; charset=utf-8", nil
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}

// Write dispatches on format: "json" (default), "csv" or "html".
func Write(w io.Writer, format string, conflicts []model.Conflict) error {
	switch strings.ToLower(format) {
	case "", "json":
		return WriteJSON(w, conflicts)
	case "csv":
		return WriteCSV(w, conflicts)
	case "html":
		return WriteChartHTML(w, conflicts)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}
