package commands

import (
	"fmt"

	"github.com/sandeepkv93/daytasks/internal/views"
)

type Handlers struct {
	OpenMenu   func() (views.Screen, error)
	BeginToday func() (views.Screen, error)
	ListToday  func() (views.Screen, error)
	OpenWeek   func() (views.Screen, error)
	ListWeek   func() (views.Screen, error)
	PickDay    func(PickDayArgs) (views.Screen, error)
	BeginEntry func() (views.Screen, error)
	Toggle     func(ToggleArgs) (views.Screen, error)
	Back       func() (views.Screen, error)
	Help       func() (views.Screen, error)
	Add        func(AddArgs) (views.Screen, error)
	Text       func(TextArgs) (views.Screen, error)
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func Execute(cmd Command, handlers Handlers) (views.Screen, error) {
	switch cmd.Type {
	case TypeOpenMenu:
		if handlers.OpenMenu == nil {
			return views.Screen{}, missing(cmd.Type)
		}
		return handlers.OpenMenu()
	case TypeBeginToday:
		if handlers.BeginToday == nil {
			return views.Screen{}, missing(cmd.Type)
		}
		return handlers.BeginToday()
	case TypeListToday:
		if handlers.ListToday == nil {
			return views.Screen{}, missing(cmd.Type)
		}
		return handlers.ListToday()
	case TypeOpenWeek:
		if handlers.OpenWeek == nil {
			return views.Screen{}, missing(cmd.Type)
		}
		return handlers.OpenWeek()
	case TypeListWeek:
		if handlers.ListWeek == nil {
			return views.Screen{}, missing(cmd.Type)
		}
		return handlers.ListWeek()
	case TypePickDay:
		if handlers.PickDay == nil {
			return views.Screen{}, missing(cmd.Type)
		}
		return handlers.PickDay(*cmd.PickDay)
	case TypeBeginEntry:
		if handlers.BeginEntry == nil {
			return views.Screen{}, missing(cmd.Type)
		}
		return handlers.BeginEntry()
	case TypeToggle:
		if handlers.Toggle == nil {
			return views.Screen{}, missing(cmd.Type)
		}
		return handlers.Toggle(*cmd.Toggle)
	case TypeBack:
		if handlers.Back == nil {
			return views.Screen{}, missing(cmd.Type)
		}
		return handlers.Back()
	case TypeHelp:
		if handlers.Help == nil {
			return views.Screen{}, missing(cmd.Type)
		}
		return handlers.Help()
	case TypeAdd:
		if handlers.Add == nil {
			return views.Screen{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeText:
		if handlers.Text == nil {
			return views.Screen{}, missing(cmd.Type)
		}
		return handlers.Text(*cmd.Text)
	default:
		return views.Screen{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
