package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyText   = errors.New("model: task text is required")
	ErrInvalidTask = errors.New("model: invalid task record")
)

// Task is one entry of a day bucket. Its JSON form is {"task": ..., "completed": ...}.
type Task struct {
	Text      string `json:"task"`
	Completed bool   `json:"completed"`
}

func NewTask(text string) (Task, error) {
	t := Task{Text: strings.TrimSpace(text)}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Text) == "" {
		return ErrEmptyText
	}
	return nil
}

// Toggled returns a copy of t with Completed flipped.
func (t Task) Toggled() Task {
	t.Completed = !t.Completed
	return t
}

// UnmarshalJSON also accepts a bare string, which is how older task files stored entries.
// A null entry or one without text is rejected with ErrInvalidTask.
func (t *Task) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("%w: null entry", ErrInvalidTask)
	}
	var out Task
	if len(trimmed) > 0 && trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &out.Text); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTask, err)
		}
	} else {
		type plain Task
		var p plain
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTask, err)
		}
		out = Task(p)
	}
	if err := out.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}
	*t = out
	return nil
}
