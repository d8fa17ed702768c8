package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sandeepkv93/daytasks/internal/model"
)

// JSONRepository keeps the whole store in memory and rewrites the file after every mutation.
type JSONRepository struct {
	mu   sync.RWMutex
	path string
	data model.Snapshot
}

func OpenJSON(path string) (*JSONRepository, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("storage: empty json store path")
	}
	r := &JSONRepository{path: trimmed, data: model.Snapshot{}}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *JSONRepository) load() error {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read store %s: %w", r.path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var loaded model.Snapshot
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, r.path, err)
	}
	for user, days := range loaded {
		if days == nil {
			days = model.UserStore{}
		}
		for date, tasks := range days {
			if tasks == nil {
				days[date] = []model.Task{}
			}
		}
		loaded[user] = days
	}
	if loaded == nil {
		loaded = model.Snapshot{}
	}
	r.data = loaded
	return nil
}

// persistLocked writes the full store, replacing the previous file contents.
func (r *JSONRepository) persistLocked() error {
	dir := filepath.Dir(r.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return persistErr(err)
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(r.data); err != nil {
		return persistErr(err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return persistErr(err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)
		return persistErr(err)
	}
	return nil
}

func (r *JSONRepository) Append(ctx context.Context, userID, date, text string) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkKey(userID, date); err != nil {
		return nil, err
	}
	task, err := model.NewTask(text)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	days, hadUser := r.data[userID]
	if !hadUser {
		days = model.UserStore{}
		r.data[userID] = days
	}
	prev, hadDate := days[date]
	days[date] = append(model.CloneTasks(prev), task)

	if err := r.persistLocked(); err != nil {
		if hadDate {
			days[date] = prev
		} else {
			delete(days, date)
		}
		if !hadUser {
			delete(r.data, userID)
		}
		return nil, err
	}
	return model.CloneTasks(days[date]), nil
}

func (r *JSONRepository) Toggle(ctx context.Context, userID, date string, index int) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tasks := r.data[userID][date]
	if index < 0 || index >= len(tasks) {
		return nil, fmt.Errorf("%w: task %d on %s", ErrNotFound, index, date)
	}
	prev := tasks[index]
	tasks[index] = prev.Toggled()
	if err := r.persistLocked(); err != nil {
		tasks[index] = prev
		return nil, err
	}
	return model.CloneTasks(tasks), nil
}

func (r *JSONRepository) DayBucket(ctx context.Context, userID, date string) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return model.CloneTasks(r.data[userID][date]), nil
}

func (r *JSONRepository) WeekBuckets(ctx context.Context, userID, monday string) ([]model.DayBucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dates, err := model.WeekDates(monday)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	days := r.data[userID]
	return collectWeek(dates, func(date string) []model.Task { return days[date] }), nil
}

func (r *JSONRepository) Export(ctx context.Context) (model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.Clone(), nil
}

func (r *JSONRepository) Import(ctx context.Context, snap model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.data
	r.data = snap.Clone()
	if err := r.persistLocked(); err != nil {
		r.data = prev
		return err
	}
	return nil
}

func (r *JSONRepository) Close() error {
	return nil
}
