package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/sandeepkv93/daytasks/internal/model"
)

func sampleSnapshot() model.Snapshot {
	return model.Snapshot{
		"b": model.UserStore{
			"02.01.2024": {{Text: "later user"}},
		},
		"a": model.UserStore{
			"10.01.2024": {{Text: "tenth"}},
			"02.01.2024": {{Text: "first"}, {Text: "second, with comma", Completed: true}},
		},
	}
}

func TestRowsOrdering(t *testing.T) {
	rows := Rows(sampleSnapshot(), "")
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	want := []string{"first", "second, with comma", "tenth", "later user"}
	for i, w := range want {
		if rows[i].Text != w {
			t.Fatalf("row %d: expected %q, got %q", i, w, rows[i].Text)
		}
	}
	if rows[1].Position != 2 || !rows[1].Completed {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestRowsDateOrderIsChronological(t *testing.T) {
	snap := model.Snapshot{"a": model.UserStore{
		"01.02.2024": {{Text: "feb"}},
		"31.01.2024": {{Text: "jan"}},
	}}
	rows := Rows(snap, "")
	if rows[0].Text != "jan" || rows[1].Text != "feb" {
		t.Fatalf("expected chronological order, got %+v", rows)
	}
}

func TestRowsUserFilter(t *testing.T) {
	rows := Rows(sampleSnapshot(), "b")
	if len(rows) != 1 || rows[0].User != "b" {
		t.Fatalf("expected only user b, got %+v", rows)
	}
	if rows := Rows(sampleSnapshot(), "nobody"); len(rows) != 0 {
		t.Fatalf("expected no rows, got %+v", rows)
	}
}

func TestToCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ToCSV(&buf, Rows(sampleSnapshot(), "a")); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(records))
	}
	if records[0][0] != "User" || records[2][3] != "second, with comma" || records[2][4] != "true" {
		t.Fatalf("unexpected records: %v", records)
	}
}

func TestToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ToJSON(&buf, Rows(sampleSnapshot(), "")); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	var got jsonExport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Count != 4 || got.Done != 1 || len(got.Tasks) != 4 {
		t.Fatalf("unexpected export: %+v", got)
	}
}

func TestToXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := ToXLSX(&buf, Rows(sampleSnapshot(), "a")); err != nil {
		t.Fatalf("ToXLSX: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][3] != "Task" || rows[1][3] != "first" || rows[3][1] != "10.01.2024" {
		t.Fatalf("unexpected sheet: %v", rows)
	}
}

func TestWriteFileByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.CSV")
	format, err := FormatFromPath(path)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if err := WriteFile(path, format, Rows(sampleSnapshot(), "")); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || !bytes.HasPrefix(data, []byte("User,Date")) {
		t.Fatalf("unexpected file: %q, %v", data, err)
	}
}

func TestParseFormat(t *testing.T) {
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatalf("expected pdf to be rejected")
	}
	if f, err := ParseFormat(" XLSX "); err != nil || f != FormatXLSX {
		t.Fatalf("expected xlsx, got %q, %v", f, err)
	}
}
