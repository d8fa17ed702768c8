package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sandeepkv93/daytasks/internal/transport"
	"github.com/sandeepkv93/daytasks/internal/update"
	"github.com/sandeepkv93/daytasks/internal/views"
)

type Config struct {
	Token       string
	Debug       bool
	PollTimeout int
	Workers     int
}

// Sender is the part of *tgbotapi.BotAPI the bot needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api     Sender
	handler transport.Handler
	log     *slog.Logger
}

func New(api Sender, handler transport.Handler, log *slog.Logger) *Bot {
	if log == nil {
		log = slog.Default()
	}
	return &Bot{api: api, handler: handler, log: log.With(slog.String("transport", "telegram"))}
}

// Serve connects with long polling and handles updates until ctx is cancelled.
func Serve(ctx context.Context, cfg Config, handler transport.Handler, log *slog.Logger) error {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return fmt.Errorf("telegram: connect: %w", err)
	}
	api.Debug = cfg.Debug

	u := tgbotapi.NewUpdate(0)
	u.Timeout = cfg.PollTimeout
	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	bot := New(api, handler, log)
	bot.log.Info("polling", slog.String("bot", api.Self.UserName))
	return bot.Run(ctx, updates, cfg.Workers)
}

// Run consumes updates until the channel closes or ctx is done.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update, workers int) error {
	d := transport.NewDispatcher(workers, 16, sessionKey, func(ctx context.Context, upd tgbotapi.Update) {
		if err := b.HandleUpdate(ctx, upd); err != nil {
			b.log.Error("update failed", slog.Int("update_id", upd.UpdateID), slog.Any("error", err))
		}
	})
	d.Start(ctx)
	defer d.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if !d.Submit(ctx, upd) {
				return nil
			}
		}
	}
}

func sessionKey(upd tgbotapi.Update) string {
	if chat := upd.FromChat(); chat != nil {
		return strconv.FormatInt(chat.ID, 10)
	}
	return ""
}

func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) error {
	switch {
	case upd.CallbackQuery != nil:
		return b.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil && upd.Message.Text != "":
		return b.handleMessage(ctx, upd.Message)
	default:
		return nil
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.Chat == nil || msg.From == nil {
		return nil
	}
	sessionID := strconv.FormatInt(msg.Chat.ID, 10)
	userID := strconv.FormatInt(msg.From.ID, 10)

	var (
		screen views.Screen
		err    error
	)
	if msg.IsCommand() {
		screen, err = b.handler.OnCommand(ctx, sessionID, userID, msg.Text)
	} else {
		screen, err = b.handler.OnTextMessage(ctx, sessionID, userID, msg.Text)
	}
	if errors.Is(err, update.ErrIgnored) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = b.api.Send(NewMessage(msg.Chat.ID, screen))
	return err
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.log.Warn("answer callback", slog.Any("error", err))
	}
	if q.From == nil {
		return nil
	}
	chatID := q.From.ID
	if q.Message != nil && q.Message.Chat != nil {
		chatID = q.Message.Chat.ID
	}
	sessionID := strconv.FormatInt(chatID, 10)
	userID := strconv.FormatInt(q.From.ID, 10)

	screen, err := b.handler.OnCallback(ctx, sessionID, userID, q.Data)
	if errors.Is(err, update.ErrIgnored) {
		return nil
	}
	if err != nil {
		return err
	}
	if q.Message == nil {
		_, err = b.api.Send(NewMessage(chatID, screen))
		return err
	}
	_, err = b.api.Send(EditMessage(chatID, q.Message.MessageID, screen))
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

func Keyboard(s views.Screen) *tgbotapi.InlineKeyboardMarkup {
	if len(s.Buttons) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(s.Buttons))
	for _, row := range s.Buttons {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Payload))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func NewMessage(chatID int64, s views.Screen) tgbotapi.MessageConfig {
	out := tgbotapi.NewMessage(chatID, s.Text)
	if kb := Keyboard(s); kb != nil {
		out.ReplyMarkup = *kb
	}
	return out
}

func EditMessage(chatID int64, messageID int, s views.Screen) tgbotapi.EditMessageTextConfig {
	out := tgbotapi.NewEditMessageText(chatID, messageID, s.Text)
	out.ReplyMarkup = Keyboard(s)
	return out
}
