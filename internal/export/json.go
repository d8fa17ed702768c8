package export

import (
	"encoding/json"
	"fmt"
	"io"
)

type jsonExport struct {
	Count int   `json:"count"`
	Done  int   `json:"completed"`
	Tasks []Row `json:"tasks"`
}

func ToJSON(w io.Writer, rows []Row) error {
	out := jsonExport{Count: len(rows), Tasks: rows}
	for _, r := range rows {
		if r.Completed {
			out.Done++
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return nil
}
