package telegram

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sandeepkv93/daytasks/internal/model"
	"github.com/sandeepkv93/daytasks/internal/storage"
	"github.com/sandeepkv93/daytasks/internal/update"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.sendErr
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) last(t *testing.T) tgbotapi.Chattable {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("nothing sent")
	}
	return f.sent[len(f.sent)-1]
}

func newBot(t *testing.T) (*Bot, *fakeAPI) {
	t.Helper()
	store, err := storage.OpenJSON(filepath.Join(t.TempDir(), "tasks.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	c, err := update.NewController(update.Options{
		Store: store,
		Clock: model.FixedClock{At: time.Date(2025, time.June, 2, 9, 0, 0, 0, time.Local)},
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	api := &fakeAPI{}
	return New(api, c, nil), api
}

func textUpdate(text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 10,
		From:      &tgbotapi.User{ID: 42},
		Chat:      &tgbotapi.Chat{ID: 100},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(strings.Fields(text)[0])}}
	}
	return tgbotapi.Update{Message: msg}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		From: &tgbotapi.User{ID: 42},
		Message: &tgbotapi.Message{
			MessageID: 11,
			Chat:      &tgbotapi.Chat{ID: 100},
		},
		Data: data,
	}}
}

func TestStartSendsMenuKeyboard(t *testing.T) {
	bot, api := newBot(t)
	if err := bot.HandleUpdate(context.Background(), textUpdate("/start")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	msg, ok := api.last(t).(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("expected MessageConfig, got %T", api.last(t))
	}
	if msg.ChatID != 100 {
		t.Fatalf("unexpected chat id %d", msg.ChatID)
	}
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(markup.InlineKeyboard) != 2 {
		t.Fatalf("unexpected markup: %#v", msg.ReplyMarkup)
	}
	first := markup.InlineKeyboard[0][0]
	if first.CallbackData == nil || *first.CallbackData != "create_today" {
		t.Fatalf("unexpected first button: %#v", first)
	}
}

func TestCallbackEditsMessageInPlace(t *testing.T) {
	bot, api := newBot(t)
	if err := bot.HandleUpdate(context.Background(), callbackUpdate("create_today")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(api.requests) != 1 {
		t.Fatalf("expected callback answer, got %d requests", len(api.requests))
	}
	edit, ok := api.last(t).(tgbotapi.EditMessageTextConfig)
	if !ok {
		t.Fatalf("expected edit, got %T", api.last(t))
	}
	if edit.MessageID != 11 || edit.Text != "Monday, 02.06.2025" {
		t.Fatalf("unexpected edit: %#v", edit)
	}

	if err := bot.HandleUpdate(context.Background(), textUpdate("Buy milk")); err != nil {
		t.Fatalf("handle text: %v", err)
	}
	msg := api.last(t).(tgbotapi.MessageConfig)
	if !strings.Contains(msg.Text, "1. Buy milk ❌") {
		t.Fatalf("unexpected reply: %q", msg.Text)
	}
}

func TestIgnoredTextSendsNothing(t *testing.T) {
	bot, api := newBot(t)
	if err := bot.HandleUpdate(context.Background(), textUpdate("hello")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(api.sent) != 0 {
		t.Fatalf("expected no reply, got %d", len(api.sent))
	}
}

func TestNotModifiedEditIsNotAnError(t *testing.T) {
	bot, api := newBot(t)
	api.sendErr = errors.New("Bad Request: message is not modified")
	if err := bot.HandleUpdate(context.Background(), callbackUpdate("list_today")); err != nil {
		t.Fatalf("expected not-modified to be swallowed, got %v", err)
	}
}

func TestRunStopsWhenChannelCloses(t *testing.T) {
	bot, api := newBot(t)
	updates := make(chan tgbotapi.Update, 2)
	updates <- textUpdate("/start")
	updates <- textUpdate("/help")
	close(updates)

	if err := bot.Run(context.Background(), updates, 2); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(api.sent) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(api.sent))
	}
}
