package views

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/daytasks/internal/model"
)

const (
	DoneMark = "✅"
	OpenMark = "❌"

	toggleButtonsPerRow = 5
)

// Renderer builds screens from store data. It never touches the store.
type Renderer struct {
	msgs Messages
}

func NewRenderer(locale string) (*Renderer, error) {
	msgs, err := LookupMessages(locale)
	if err != nil {
		return nil, err
	}
	return &Renderer{msgs: msgs}, nil
}

func (r *Renderer) Messages() Messages {
	return r.msgs
}

func TaskLine(index int, task model.Task) string {
	mark := OpenMark
	if task.Completed {
		mark = DoneMark
	}
	return fmt.Sprintf("%d. %s %s", index+1, task.Text, mark)
}

func taskLines(tasks []model.Task) []string {
	lines := make([]string, 0, len(tasks))
	for i, task := range tasks {
		lines = append(lines, TaskLine(i, task))
	}
	return lines
}

// DayHeader renders "<Weekday>, <date>", or the bare date when it does not parse.
func (r *Renderer) DayHeader(date string) string {
	t, err := model.ParseDate(date)
	if err != nil {
		return date
	}
	return r.msgs.WeekdayName(model.WeekdayOf(t)) + ", " + date
}

func (r *Renderer) mainMenuButtons() [][]Button {
	return [][]Button{
		{
			{Label: r.msgs.CreateToday, Payload: PayloadCreateToday},
			{Label: r.msgs.ListToday, Payload: PayloadListToday},
		},
		{
			{Label: r.msgs.CreateWeek, Payload: PayloadCreateWeek},
			{Label: r.msgs.ListWeek, Payload: PayloadListWeek},
		},
	}
}

func (r *Renderer) MainMenu() Screen {
	return Screen{Kind: KindMainMenu, Text: r.msgs.Greeting, Buttons: r.mainMenuButtons()}
}

func (r *Renderer) DayPrompt(date string) Screen {
	return Screen{
		Kind: KindDayPrompt,
		Text: r.DayHeader(date),
		Buttons: [][]Button{{
			{Label: r.msgs.CreateTask, Payload: PayloadCreateTask},
			{Label: r.msgs.Back, Payload: PayloadBackToStart},
		}},
	}
}

// TextPrompt asks for the task text. A non-empty note is shown above the prompt.
func (r *Renderer) TextPrompt(date, note string) Screen {
	lines := make([]string, 0, 3)
	if note != "" {
		lines = append(lines, note)
	}
	lines = append(lines, r.DayHeader(date), r.msgs.TextPrompt)
	return Screen{
		Kind:    KindTextPrompt,
		Text:    strings.Join(lines, "\n"),
		Buttons: [][]Button{{{Label: r.msgs.Back, Payload: PayloadBackToStart}}},
	}
}

func (r *Renderer) TaskList(date string, tasks []model.Task) Screen {
	var text string
	if len(tasks) == 0 {
		text = r.DayHeader(date) + "\n" + r.msgs.EmptyDay
	} else {
		text = r.DayHeader(date) + "\n" + r.msgs.YourTasks + "\n" + strings.Join(taskLines(tasks), "\n")
	}

	buttons := make([][]Button, 0, len(tasks)/toggleButtonsPerRow+2)
	var row []Button
	for i, task := range tasks {
		mark := OpenMark
		if task.Completed {
			mark = DoneMark
		}
		row = append(row, Button{Label: fmt.Sprintf("%d %s", i+1, mark), Payload: TogglePayload(i)})
		if len(row) == toggleButtonsPerRow {
			buttons = append(buttons, row)
			row = nil
		}
	}
	if len(row) > 0 {
		buttons = append(buttons, row)
	}
	create := r.msgs.CreateTask
	if len(tasks) > 0 {
		create = r.msgs.CreateMore
	}
	buttons = append(buttons, []Button{
		{Label: create, Payload: PayloadCreateTask},
		{Label: r.msgs.BackToStart, Payload: PayloadBackToStart},
	})
	return Screen{Kind: KindTaskList, Text: text, Buttons: buttons}
}

func (r *Renderer) WeekPicker(monday, sunday string) Screen {
	days := model.Weekdays()
	buttons := [][]Button{{}, {}, {}}
	for i, day := range days {
		rowIdx := i / 3
		buttons[rowIdx] = append(buttons[rowIdx], Button{Label: r.msgs.WeekdayName(day), Payload: DayPayload(day)})
	}
	buttons = append(buttons, []Button{{Label: r.msgs.Back, Payload: PayloadBackToStart}})
	return Screen{
		Kind:    KindWeekPicker,
		Text:    fmt.Sprintf("%s – %s\n%s", monday, sunday, r.msgs.PickDay),
		Buttons: buttons,
	}
}

// WeekTaskList renders one block per stored day, in the order given.
func (r *Renderer) WeekTaskList(buckets []model.DayBucket) Screen {
	blocks := make([]string, 0, len(buckets))
	for _, bucket := range buckets {
		if len(bucket.Tasks) == 0 {
			continue
		}
		blocks = append(blocks, bucket.Date+"\n"+strings.Join(taskLines(bucket.Tasks), "\n"))
	}
	text := r.msgs.EmptyWeek
	if len(blocks) > 0 {
		text = strings.Join(blocks, "\n\n")
	}
	return Screen{
		Kind: KindWeekTaskList,
		Text: text,
		Buttons: [][]Button{{
			{Label: r.msgs.CreateWeek, Payload: PayloadCreateWeek},
			{Label: r.msgs.BackToStart, Payload: PayloadBackToStart},
		}},
	}
}

func (r *Renderer) DaySelected(day model.Weekday, date string) Screen {
	return Screen{
		Kind: KindDaySelected,
		Text: fmt.Sprintf(r.msgs.DaySelected, r.msgs.WeekdayName(day), date) + "\n" + r.msgs.TextPrompt,
		Buttons: [][]Button{{
			{Label: r.msgs.CreateTask, Payload: PayloadCreateTaskForDay},
			{Label: r.msgs.Back, Payload: PayloadBackToStart},
		}},
	}
}

func (r *Renderer) Help() Screen {
	return Screen{
		Kind:    KindHelp,
		Text:    r.msgs.Help,
		Buttons: r.mainMenuButtons(),
	}
}

func (r *Renderer) SaveFailed() Screen {
	return Screen{
		Kind:    KindSaveFailed,
		Text:    r.msgs.SaveFailed,
		Buttons: [][]Button{{{Label: r.msgs.BackToStart, Payload: PayloadBackToStart}}},
	}
}
