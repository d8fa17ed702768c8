package ops

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sandeepkv93/daytasks/internal/model"
)

const (
	snapshotPrefix = "tasks-"
	snapshotSuffix = ".json.gz"
	snapshotStamp  = "20060102-150405"
)

type Exporter interface {
	Export(ctx context.Context) (model.Snapshot, error)
}

// Snapshotter writes gzipped copies of the whole store and keeps the newest Keep files.
type Snapshotter struct {
	Source Exporter
	Dir    string
	Keep   int
	Clock  model.Clock
}

func (s *Snapshotter) Run(ctx context.Context) (string, error) {
	if s.Source == nil {
		return "", errors.New("ops: nil snapshot source")
	}
	clock := s.Clock
	if clock == nil {
		clock = model.SystemClock{}
	}
	snap, err := s.Source.Export(ctx)
	if err != nil {
		return "", fmt.Errorf("export store: %w", err)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	enc := json.NewEncoder(zw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(snap); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress snapshot: %w", err)
	}

	name := snapshotPrefix + clock.Now().Format(snapshotStamp) + snapshotSuffix
	path := filepath.Join(s.Dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if _, err := s.Prune(); err != nil {
		return path, err
	}
	return path, nil
}

// List returns snapshot files in Dir, oldest first.
func (s *Snapshotter) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
			continue
		}
		out = append(out, filepath.Join(s.Dir, name))
	}
	sort.Strings(out)
	return out, nil
}

// Prune removes all but the newest Keep snapshots and returns the removed paths.
func (s *Snapshotter) Prune() ([]string, error) {
	if s.Keep <= 0 {
		return nil, nil
	}
	files, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(files) <= s.Keep {
		return nil, nil
	}
	stale := files[:len(files)-s.Keep]
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("prune %s: %w", path, err)
		}
	}
	return stale, nil
}

func ReadSnapshot(path string) (model.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}
	var snap model.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if snap == nil {
		snap = model.Snapshot{}
	}
	return snap, nil
}
