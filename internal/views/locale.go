package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/daytasks/internal/model"
)

var ErrUnknownLocale = errors.New("views: unknown locale")

const (
	LocaleEN = "en"
	LocaleRU = "ru"
)

type Messages struct {
	Greeting    string
	CreateToday string
	ListToday   string
	CreateWeek  string
	ListWeek    string
	CreateTask  string
	CreateMore  string
	Back        string
	BackToStart string

	TextPrompt    string
	EmptyTextNote string
	YourTasks     string
	EmptyDay      string
	EmptyWeek     string
	PickDay       string
	DaySelected   string
	SaveFailed    string
	Help          string
	Weekdays      [7]string
}

var catalog = map[string]Messages{
	LocaleEN: {
		Greeting:    "Hi! Pick a command below and have a productive day <3",
		CreateToday: "Create for today",
		ListToday:   "Today's list",
		CreateWeek:  "Create for the week",
		ListWeek:    "Week's list",
		CreateTask:  "Create tasks",
		CreateMore:  "Create more tasks",
		Back:        "Go back",
		BackToStart: "Back to start",

		TextPrompt:    "Enter your task and don't put it off!",
		EmptyTextNote: "A task needs some text.",
		YourTasks:     "Your tasks:",
		EmptyDay:      "No tasks for this day!",
		EmptyWeek:     "No tasks for this week yet.",
		PickDay:       "Pick a day of the week",
		DaySelected:   "Selected %s, %s",
		SaveFailed:    "Something went wrong: the task may not have been saved. Please try again.",
		Help: "# daytasks\n\n" +
			"- `/start` or `/menu` opens the main menu\n" +
			"- `/add <text>` adds a task for today\n" +
			"- `/today` shows today's list\n" +
			"- `/week` shows this week's tasks\n" +
			"- tap a task button to mark it done or not done\n",
		Weekdays: [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
	},
	LocaleRU: {
		Greeting:    "Привет! Выбери внизу необходимые команды и продуктивного тебе дня <3",
		CreateToday: "Создать на сегодня",
		ListToday:   "Список на сегодня",
		CreateWeek:  "Создать на неделю",
		ListWeek:    "Список на неделю",
		CreateTask:  "Создать дела",
		CreateMore:  "Создать еще дела",
		Back:        "Вернуться назад",
		BackToStart: "Вернуться к началу",

		TextPrompt:    "Введите ваше дельце и не откладывайте его!",
		EmptyTextNote: "Дело не может быть пустым.",
		YourTasks:     "Ваши дела:",
		EmptyDay:      "На этот день дел нет!",
		EmptyWeek:     "На этой неделе дел пока нет.",
		PickDay:       "Выберите день недели",
		DaySelected:   "Выбран день: %s, %s",
		SaveFailed:    "Что-то пошло не так: дело могло не сохраниться. Попробуйте еще раз.",
		Help: "# daytasks\n\n" +
			"- `/start` или `/menu` открывает главное меню\n" +
			"- `/add <текст>` добавляет дело на сегодня\n" +
			"- `/today` показывает дела на сегодня\n" +
			"- `/week` показывает дела на неделю\n" +
			"- нажмите на кнопку дела, чтобы отметить его выполненным\n",
		Weekdays: [7]string{"Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье"},
	},
}

func Locales() []string {
	return []string{LocaleEN, LocaleRU}
}

func LookupMessages(locale string) (Messages, error) {
	key := strings.ToLower(strings.TrimSpace(locale))
	if key == "" {
		key = LocaleEN
	}
	msgs, ok := catalog[key]
	if !ok {
		return Messages{}, fmt.Errorf("%w: %q", ErrUnknownLocale, locale)
	}
	return msgs, nil
}

func (m Messages) WeekdayName(day model.Weekday) string {
	if !day.IsValid() {
		return day.String()
	}
	return m.Weekdays[day]
}
