package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewTaskTrimsAndValidates(t *testing.T) {
	task, err := NewTask("  Buy milk \n")
	if err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
	if task.Text != "Buy milk" || task.Completed {
		t.Fatalf("unexpected task: %#v", task)
	}

	_, err = NewTask("   ")
	if !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got: %v", err)
	}
}

func TestTaskToggledIsInvolution(t *testing.T) {
	task := Task{Text: "Call mom"}
	once := task.Toggled()
	if !once.Completed {
		t.Fatal("expected completed after first toggle")
	}
	if twice := once.Toggled(); twice != task {
		t.Fatalf("expected original task after two toggles, got %#v", twice)
	}
}

func TestTaskJSONLayout(t *testing.T) {
	raw, err := json.Marshal(Task{Text: "Buy milk", Completed: true})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"task":"Buy milk","completed":true}` {
		t.Fatalf("unexpected json: %s", raw)
	}
}

func TestTaskUnmarshalAcceptsLegacyStrings(t *testing.T) {
	var tasks []Task
	input := `["Buy milk", {"task": "Walk dog", "completed": true}]`
	if err := json.Unmarshal([]byte(input), &tasks); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []Task{{Text: "Buy milk"}, {Text: "Walk dog", Completed: true}}
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	for i := range want {
		if tasks[i] != want[i] {
			t.Fatalf("task %d = %#v, want %#v", i, tasks[i], want[i])
		}
	}
}

func TestTaskUnmarshalRejectsGarbage(t *testing.T) {
	var task Task
	err := json.Unmarshal([]byte(`42`), &task)
	if !errors.Is(err, ErrInvalidTask) {
		t.Fatalf("expected ErrInvalidTask, got: %v", err)
	}
}

func TestTaskUnmarshalRejectsEmptyEntries(t *testing.T) {
	for _, input := range []string{`[""]`, `["   "]`, `[null]`, `[{"task": "", "completed": true}]`, `[{"completed": false}]`} {
		var tasks []Task
		err := json.Unmarshal([]byte(input), &tasks)
		if !errors.Is(err, ErrInvalidTask) {
			t.Fatalf("%s: expected ErrInvalidTask, got: %v", input, err)
		}
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	snap := Snapshot{"u1": UserStore{"02.06.2025": {{Text: "a"}}}}
	cloned := snap.Clone()
	cloned["u1"]["02.06.2025"][0].Completed = true
	if snap["u1"]["02.06.2025"][0].Completed {
		t.Fatal("clone shares task storage with original")
	}
}
