package ops

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/daytasks/internal/model"
)

type staticExporter struct {
	snap model.Snapshot
	err  error
}

func (s staticExporter) Export(context.Context) (model.Snapshot, error) {
	return s.snap, s.err
}

func sampleSnapshot() model.Snapshot {
	return model.Snapshot{
		"42": model.UserStore{
			"13.02.2024": {{Text: "купить хлеб"}, {Text: "call mom", Completed: true}},
		},
	}
}

func TestSnapshotterWritesReadableFile(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2024, 2, 13, 9, 30, 5, 0, time.UTC)
	s := &Snapshotter{Source: staticExporter{snap: sampleSnapshot()}, Dir: dir, Keep: 3, Clock: model.FixedClock{At: at}}

	path, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run snapshot: %v", err)
	}
	if filepath.Base(path) != "tasks-20240213-093005.json.gz" {
		t.Fatalf("unexpected snapshot name %q", filepath.Base(path))
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file left behind: %v", err)
	}

	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	tasks := got["42"]["13.02.2024"]
	if len(tasks) != 2 || tasks[0].Text != "купить хлеб" || !tasks[1].Completed {
		t.Fatalf("unexpected snapshot contents: %+v", got)
	}
}

func TestSnapshotterKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 2, 13, 0, 0, 0, 0, time.UTC)
	var paths []string
	for i := 0; i < 4; i++ {
		s := &Snapshotter{
			Source: staticExporter{snap: sampleSnapshot()},
			Dir:    dir,
			Keep:   2,
			Clock:  model.FixedClock{At: base.Add(time.Duration(i) * time.Hour)},
		}
		path, err := s.Run(context.Background())
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		paths = append(paths, path)
	}

	s := &Snapshotter{Dir: dir, Keep: 2}
	files, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 || files[0] != paths[2] || files[1] != paths[3] {
		t.Fatalf("expected the two newest snapshots, got %v", files)
	}
}

func TestSnapshotterIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := &Snapshotter{Source: staticExporter{snap: model.Snapshot{}}, Dir: dir, Keep: 1, Clock: model.FixedClock{At: time.Now()}}
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Fatalf("foreign file removed: %v", err)
	}
}

func TestSnapshotterExportError(t *testing.T) {
	boom := errors.New("boom")
	s := &Snapshotter{Source: staticExporter{err: boom}, Dir: t.TempDir(), Keep: 1}
	if _, err := s.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected export error, got %v", err)
	}
}

func TestListMissingDir(t *testing.T) {
	s := &Snapshotter{Dir: filepath.Join(t.TempDir(), "absent")}
	files, err := s.List()
	if err != nil || len(files) != 0 {
		t.Fatalf("expected empty list, got %v, %v", files, err)
	}
}

func TestReadSnapshotPlainJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(path, []byte(`{"7":{"01.01.2024":[{"task":"a","completed":false},"b"]}}`), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if tasks := got["7"]["01.01.2024"]; len(tasks) != 2 || tasks[1].Text != "b" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}
