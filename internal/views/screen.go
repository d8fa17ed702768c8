package views

import (
	"strconv"

	"github.com/sandeepkv93/daytasks/internal/model"
)

type Kind string

const (
	KindMainMenu     Kind = "main_menu"
	KindDayPrompt    Kind = "day_prompt"
	KindTextPrompt   Kind = "text_prompt"
	KindTaskList     Kind = "task_list"
	KindWeekPicker   Kind = "week_picker"
	KindWeekTaskList Kind = "week_task_list"
	KindDaySelected  Kind = "day_selected"
	KindHelp         Kind = "help"
	KindSaveFailed   Kind = "save_failed"
)

// Button payloads routed back to the controller.
const (
	PayloadCreateToday      = "create_today"
	PayloadListToday        = "list_today"
	PayloadCreateWeek       = "create_week"
	PayloadListWeek         = "list_week"
	PayloadBackToStart      = "back_to_start"
	PayloadCreateTask       = "create_task"
	PayloadCreateTaskForDay = "create_task_for_day"
	TogglePrefix            = "toggle_"
)

func TogglePayload(index int) string {
	return TogglePrefix + strconv.Itoa(index)
}

func DayPayload(day model.Weekday) string {
	return day.Token()
}

type Button struct {
	Label   string
	Payload string
}

// Screen is transport-neutral: text plus rows of buttons.
type Screen struct {
	Kind    Kind
	Text    string
	Buttons [][]Button
}

// Flatten returns the buttons in reading order.
func (s Screen) Flatten() []Button {
	out := make([]Button, 0)
	for _, row := range s.Buttons {
		out = append(out, row...)
	}
	return out
}

func (s Screen) HasPayload(payload string) bool {
	for _, b := range s.Flatten() {
		if b.Payload == payload {
			return true
		}
	}
	return false
}
