package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sandeepkv93/daytasks/internal/model"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

var header = []string{"User", "Date", "Position", "Task", "Completed"}

// Row is one task flattened out of its bucket. Position is 1-based, as shown to users.
type Row struct {
	User      string `json:"user"`
	Date      string `json:"date"`
	Position  int    `json:"position"`
	Text      string `json:"task"`
	Completed bool   `json:"completed"`
}

// Rows flattens snap ordered by user, then date, then position. A non-empty user keeps only that user.
func Rows(snap model.Snapshot, user string) []Row {
	out := make([]Row, 0)
	for id, days := range snap {
		if user != "" && id != user {
			continue
		}
		for date, tasks := range days {
			for i, task := range tasks {
				out = append(out, Row{User: id, Date: date, Position: i + 1, Text: task.Text, Completed: task.Completed})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.User != b.User {
			return a.User < b.User
		}
		if a.Date != b.Date {
			return dateLess(a.Date, b.Date)
		}
		return a.Position < b.Position
	})
	return out
}

// dateLess orders valid dates chronologically ahead of unparseable keys.
func dateLess(a, b string) bool {
	ta, errA := model.ParseDate(a)
	tb, errB := model.ParseDate(b)
	switch {
	case errA == nil && errB == nil:
		return ta.Before(tb)
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}

func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// FormatFromPath guesses the format from the file extension.
func FormatFromPath(path string) (string, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

func Write(w io.Writer, format string, rows []Row) error {
	switch format {
	case FormatCSV:
		return ToCSV(w, rows)
	case FormatJSON:
		return ToJSON(w, rows)
	case FormatXLSX:
		return ToXLSX(w, rows)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func WriteFile(path, format string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s file: %w", format, err)
	}
	if err := Write(f, format, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
