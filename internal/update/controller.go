package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/daytasks/internal/commands"
	"github.com/sandeepkv93/daytasks/internal/model"
	"github.com/sandeepkv93/daytasks/internal/storage"
	"github.com/sandeepkv93/daytasks/internal/views"
)

// ErrIgnored means the event has no meaning in the session's current state.
// Transports send nothing back for it.
var ErrIgnored = errors.New("update: event ignored")

type Options struct {
	Store    storage.Repository
	Renderer *views.Renderer
	Clock    model.Clock
	Logger   *slog.Logger
	Sessions *Sessions
}

// Controller turns transport events into store mutations and the next screen.
type Controller struct {
	store    storage.Repository
	render   *views.Renderer
	clock    model.Clock
	log      *slog.Logger
	sessions *Sessions
}

func NewController(opts Options) (*Controller, error) {
	if opts.Store == nil {
		return nil, errors.New("update: nil store")
	}
	c := &Controller{
		store:    opts.Store,
		render:   opts.Renderer,
		clock:    opts.Clock,
		log:      opts.Logger,
		sessions: opts.Sessions,
	}
	if c.render == nil {
		r, err := views.NewRenderer(views.LocaleEN)
		if err != nil {
			return nil, err
		}
		c.render = r
	}
	if c.clock == nil {
		c.clock = model.SystemClock{}
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.sessions == nil {
		c.sessions = NewSessions()
	}
	return c, nil
}

func (c *Controller) Sessions() *Sessions {
	return c.sessions
}

// State reports the session's FSM state and remembered day without creating the session.
func (c *Controller) State(sessionID string) (State, string) {
	sess, ok := c.sessions.lookup(sessionID)
	if !ok {
		return StateIdle, ""
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.State(), sess.selectedDate
}

func (c *Controller) OnCommand(ctx context.Context, sessionID, userID, text string) (views.Screen, error) {
	cmd, err := commands.Parse(text)
	if err != nil {
		return views.Screen{}, fmt.Errorf("%w: %w", ErrIgnored, err)
	}
	return c.handle(ctx, sessionID, userID, cmd)
}

func (c *Controller) OnCallback(ctx context.Context, sessionID, userID, payload string) (views.Screen, error) {
	cmd, err := commands.ParsePayload(payload)
	if err != nil {
		return views.Screen{}, fmt.Errorf("%w: %w", ErrIgnored, err)
	}
	return c.handle(ctx, sessionID, userID, cmd)
}

func (c *Controller) OnTextMessage(ctx context.Context, sessionID, userID, text string) (views.Screen, error) {
	return c.handle(ctx, sessionID, userID, commands.Text(text))
}

func (c *Controller) handle(ctx context.Context, sessionID, userID string, cmd commands.Command) (views.Screen, error) {
	now := c.clock.Now()
	sess := c.sessions.acquire(sessionID, now)
	defer sess.mu.Unlock()

	log := c.log.With(
		slog.String("request_id", uuid.NewString()),
		slog.String("session", sessionID),
		slog.String("user", userID),
		slog.String("event", string(cmd.Type)),
	)
	from := sess.State()

	ev := &event{c: c, ctx: ctx, sess: sess, userID: userID, now: now, log: log}
	screen, err := commands.Execute(cmd, ev.handlers())
	switch {
	case errors.Is(err, ErrIgnored):
		log.Debug("event ignored", slog.String("state", string(from)))
		return views.Screen{}, err
	case err != nil:
		log.Error("event failed", slog.String("state", string(from)), slog.Any("error", err))
		return views.Screen{}, err
	}
	log.Debug("event handled",
		slog.String("from", string(from)),
		slog.String("to", string(sess.State())),
		slog.String("screen", string(screen.Kind)),
	)
	return screen, nil
}

// event carries one event's context through the handler table.
type event struct {
	c      *Controller
	ctx    context.Context
	sess   *Session
	userID string
	now    time.Time
	log    *slog.Logger
}

func (e *event) handlers() commands.Handlers {
	return commands.Handlers{
		OpenMenu:   e.openMenu,
		Back:       e.openMenu,
		Help:       e.help,
		BeginToday: e.beginToday,
		ListToday:  e.listToday,
		OpenWeek:   e.openWeek,
		ListWeek:   e.listWeek,
		PickDay:    e.pickDay,
		BeginEntry: e.beginEntry,
		Toggle:     e.toggle,
		Text:       e.text,
		Add:        e.add,
	}
}

func (e *event) today() string {
	_, date := model.Today(e.now)
	return date
}

// targetDate is the remembered day, or today when none is remembered.
func (e *event) targetDate() string {
	if e.sess.selectedDate != "" {
		return e.sess.selectedDate
	}
	return e.today()
}

func (e *event) openMenu() (views.Screen, error) {
	e.sess.selectedDate = ""
	if err := e.sess.fire(e.ctx, eventOpenMenu); err != nil {
		return views.Screen{}, err
	}
	return e.c.render.MainMenu(), nil
}

func (e *event) help() (views.Screen, error) {
	return e.c.render.Help(), nil
}

func (e *event) beginToday() (views.Screen, error) {
	e.sess.selectedDate = ""
	if err := e.sess.fire(e.ctx, eventBeginEntry); err != nil {
		return views.Screen{}, err
	}
	return e.c.render.DayPrompt(e.today()), nil
}

func (e *event) listToday() (views.Screen, error) {
	date := e.today()
	tasks, err := e.c.store.DayBucket(e.ctx, e.userID, date)
	if err != nil {
		return views.Screen{}, err
	}
	return e.c.render.TaskList(date, tasks), nil
}

func (e *event) openWeek() (views.Screen, error) {
	if err := e.sess.fire(e.ctx, eventOpenWeek); err != nil {
		return views.Screen{}, err
	}
	monday, sunday := model.WeekRange(e.now)
	return e.c.render.WeekPicker(monday, sunday), nil
}

func (e *event) listWeek() (views.Screen, error) {
	monday, _ := model.WeekRange(e.now)
	buckets, err := e.c.store.WeekBuckets(e.ctx, e.userID, monday)
	if err != nil {
		return views.Screen{}, err
	}
	return e.c.render.WeekTaskList(buckets), nil
}

func (e *event) pickDay(args commands.PickDayArgs) (views.Screen, error) {
	if e.sess.State() != StateAwaitingDay {
		return views.Screen{}, fmt.Errorf("%w: day %s outside week picker", ErrIgnored, args.Day.Token())
	}
	monday, _ := model.WeekRange(e.now)
	date, err := model.WeekDateFor(args.Day, monday)
	if err != nil {
		return views.Screen{}, err
	}
	if err := e.sess.fire(e.ctx, eventPickDay); err != nil {
		return views.Screen{}, err
	}
	e.sess.selectedDate = date
	return e.c.render.DaySelected(args.Day, date), nil
}

func (e *event) beginEntry() (views.Screen, error) {
	if err := e.sess.fire(e.ctx, eventBeginEntry); err != nil {
		return views.Screen{}, err
	}
	return e.c.render.TextPrompt(e.targetDate(), ""), nil
}

func (e *event) toggle(args commands.ToggleArgs) (views.Screen, error) {
	date := e.targetDate()
	tasks, err := e.c.store.Toggle(e.ctx, e.userID, date, args.Index)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		e.log.Debug("toggle out of range", slog.Int("index", args.Index), slog.String("date", date))
		tasks, err = e.c.store.DayBucket(e.ctx, e.userID, date)
		if err != nil {
			return views.Screen{}, err
		}
	case errors.Is(err, storage.ErrPersistence):
		e.log.Error("toggle not saved", slog.String("date", date), slog.Any("error", err))
		return e.c.render.SaveFailed(), nil
	case err != nil:
		return views.Screen{}, err
	}
	return e.c.render.TaskList(date, tasks), nil
}

func (e *event) text(args commands.TextArgs) (views.Screen, error) {
	if e.sess.State() != StateAwaitingText {
		return views.Screen{}, fmt.Errorf("%w: free text in state %s", ErrIgnored, e.sess.State())
	}
	date := e.targetDate()
	tasks, err := e.append(date, args.Text)
	if err != nil {
		return e.appendFailed(date, err)
	}
	if err := e.sess.fire(e.ctx, eventRecord); err != nil {
		return views.Screen{}, err
	}
	return e.c.render.TaskList(date, tasks), nil
}

func (e *event) add(args commands.AddArgs) (views.Screen, error) {
	e.sess.selectedDate = ""
	date := e.today()
	tasks, err := e.append(date, args.Text)
	if errors.Is(err, model.ErrEmptyText) {
		if fireErr := e.sess.fire(e.ctx, eventBeginEntry); fireErr != nil {
			return views.Screen{}, fireErr
		}
		return e.c.render.TextPrompt(date, e.c.render.Messages().EmptyTextNote), nil
	}
	if err != nil {
		return e.appendFailed(date, err)
	}
	if err := e.sess.fire(e.ctx, eventOpenMenu); err != nil {
		return views.Screen{}, err
	}
	return e.c.render.TaskList(date, tasks), nil
}

func (e *event) append(date, text string) ([]model.Task, error) {
	tasks, err := e.c.store.Append(e.ctx, e.userID, date, text)
	if err == nil {
		e.log.Info("task recorded", slog.String("date", date), slog.Int("count", len(tasks)))
	}
	return tasks, err
}

// appendFailed maps a failed append to the screen the user sees. State is left as it was.
func (e *event) appendFailed(date string, err error) (views.Screen, error) {
	switch {
	case errors.Is(err, model.ErrEmptyText):
		return e.c.render.TextPrompt(date, e.c.render.Messages().EmptyTextNote), nil
	case errors.Is(err, storage.ErrPersistence):
		e.log.Error("task not saved", slog.String("date", date), slog.Any("error", err))
		return e.c.render.SaveFailed(), nil
	default:
		return views.Screen{}, err
	}
}
