package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/daytasks/internal/model"
	"github.com/sandeepkv93/daytasks/internal/views"
)

// Type is the closed set of events the controller understands.
type Type string

const (
	TypeOpenMenu   Type = "open_menu"
	TypeBeginToday Type = "begin_today"
	TypeListToday  Type = "list_today"
	TypeOpenWeek   Type = "open_week"
	TypeListWeek   Type = "list_week"
	TypePickDay    Type = "pick_day"
	TypeBeginEntry Type = "begin_entry"
	TypeToggle     Type = "toggle"
	TypeBack       Type = "back"
	TypeHelp       Type = "help"
	TypeAdd        Type = "add"
	TypeText       Type = "text"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type PickDayArgs struct {
	Day model.Weekday
}

type ToggleArgs struct {
	Index int
}

type AddArgs struct {
	Text string
}

type TextArgs struct {
	Text string
}

type Command struct {
	Type    Type
	Raw     string
	PickDay *PickDayArgs
	Toggle  *ToggleArgs
	Add     *AddArgs
	Text    *TextArgs
}

var slashCommands = map[string]Type{
	"start": TypeOpenMenu,
	"menu":  TypeOpenMenu,
	"help":  TypeHelp,
	"add":   TypeAdd,
	"today": TypeListToday,
	"week":  TypeListWeek,
}

var payloads = map[string]Type{
	views.PayloadCreateToday:      TypeBeginToday,
	views.PayloadListToday:        TypeListToday,
	views.PayloadCreateWeek:       TypeOpenWeek,
	views.PayloadListWeek:         TypeListWeek,
	views.PayloadBackToStart:      TypeBack,
	views.PayloadCreateTask:       TypeBeginEntry,
	views.PayloadCreateTaskForDay: TypeBeginEntry,
}

// Parse reads a slash command such as "/add buy milk". The leading slash is optional and
// a "@botname" suffix on the command word is dropped.
func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	head, rest, _ := strings.Cut(raw, " ")
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	head = strings.ToLower(head)

	typ, ok := slashCommands[head]
	if !ok {
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
	cmd := Command{Type: typ, Raw: input}
	if typ == TypeAdd {
		cmd.Add = &AddArgs{Text: strings.TrimSpace(rest)}
	}
	return cmd, nil
}

// ParsePayload reads a button payload token.
func ParsePayload(payload string) (Command, error) {
	token := strings.TrimSpace(payload)
	if token == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "payload is empty"}
	}
	if typ, ok := payloads[token]; ok {
		return Command{Type: typ, Raw: payload}, nil
	}
	if strings.HasPrefix(token, views.TogglePrefix) {
		return parseToggle(payload, strings.TrimPrefix(token, views.TogglePrefix))
	}
	if day, err := model.ParseWeekday(token); err == nil {
		return Command{Type: TypePickDay, Raw: payload, PickDay: &PickDayArgs{Day: day}}, nil
	}
	return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported payload: %s", token)}
}

func parseToggle(raw, arg string) (Command, error) {
	index, err := strconv.Atoi(arg)
	if err != nil || index < 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("toggle needs a task index, got %q", arg)}
	}
	return Command{Type: TypeToggle, Raw: raw, Toggle: &ToggleArgs{Index: index}}, nil
}

// Text wraps a free-text message. Text is not trimmed here; validation belongs to the store.
func Text(text string) Command {
	return Command{Type: TypeText, Raw: text, Text: &TextArgs{Text: text}}
}
