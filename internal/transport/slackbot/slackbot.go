package slackbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/sandeepkv93/daytasks/internal/transport"
	"github.com/sandeepkv93/daytasks/internal/update"
	"github.com/sandeepkv93/daytasks/internal/views"
)

const maxButtonsPerBlock = 5

type Config struct {
	BotToken string
	AppToken string
	Debug    bool
	Workers  int
}

// Poster is the part of *slack.Client the bot needs.
type Poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
}

type Kind int

const (
	KindMessage Kind = iota
	KindCallback
	KindCommand
)

// Inbound is a Slack event reduced to what the controller needs.
type Inbound struct {
	Kind      Kind
	Channel   string
	User      string
	Text      string
	MessageTS string
}

func (in Inbound) SessionID() string {
	return in.Channel + ":" + in.User
}

type Bot struct {
	api     Poster
	handler transport.Handler
	log     *slog.Logger
}

func New(api Poster, handler transport.Handler, log *slog.Logger) *Bot {
	if log == nil {
		log = slog.Default()
	}
	return &Bot{api: api, handler: handler, log: log.With(slog.String("transport", "slack"))}
}

// Serve runs a Socket Mode connection until ctx is cancelled.
func Serve(ctx context.Context, cfg Config, handler transport.Handler, log *slog.Logger) error {
	api := slack.New(
		cfg.BotToken,
		slack.OptionAppLevelToken(cfg.AppToken),
		slack.OptionDebug(cfg.Debug),
	)
	client := socketmode.New(api)
	bot := New(api, handler, log)

	d := transport.NewDispatcher(cfg.Workers, 16, Inbound.SessionID, func(ctx context.Context, in Inbound) {
		if err := bot.Handle(ctx, in); err != nil {
			bot.log.Error("event failed", slog.String("session", in.SessionID()), slog.Any("error", err))
		}
	})
	d.Start(ctx)
	defer d.Close()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case envelope, ok := <-client.Events:
				if !ok {
					return
				}
				in, handled := bot.fromEnvelope(envelope)
				if envelope.Request != nil {
					client.Ack(*envelope.Request)
				}
				if handled && !d.Submit(ctx, in) {
					return
				}
			}
		}
	}()

	bot.log.Info("socket mode starting")
	if err := client.RunContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("slack: %w", err)
	}
	return nil
}

func (b *Bot) fromEnvelope(envelope socketmode.Event) (Inbound, bool) {
	switch envelope.Type {
	case socketmode.EventTypeEventsAPI:
		ev, ok := envelope.Data.(slackevents.EventsAPIEvent)
		if !ok || ev.Type != slackevents.CallbackEvent {
			return Inbound{}, false
		}
		msg, ok := ev.InnerEvent.Data.(*slackevents.MessageEvent)
		if !ok {
			return Inbound{}, false
		}
		return FromMessageEvent(msg)
	case socketmode.EventTypeInteractive:
		cb, ok := envelope.Data.(slack.InteractionCallback)
		if !ok {
			return Inbound{}, false
		}
		return FromInteraction(cb)
	case socketmode.EventTypeSlashCommand:
		cmd, ok := envelope.Data.(slack.SlashCommand)
		if !ok {
			return Inbound{}, false
		}
		return FromSlashCommand(cmd), true
	case socketmode.EventTypeConnected:
		b.log.Info("socket mode connected")
	case socketmode.EventTypeConnectionError:
		b.log.Warn("socket mode connection error")
	}
	return Inbound{}, false
}

// FromMessageEvent skips bot posts and edits, which carry a BotID or SubType.
func FromMessageEvent(ev *slackevents.MessageEvent) (Inbound, bool) {
	if ev == nil || ev.BotID != "" || ev.SubType != "" || ev.User == "" || strings.TrimSpace(ev.Text) == "" {
		return Inbound{}, false
	}
	kind := KindMessage
	if transport.IsCommand(ev.Text) {
		kind = KindCommand
	}
	return Inbound{Kind: kind, Channel: ev.Channel, User: ev.User, Text: ev.Text}, true
}

func FromInteraction(cb slack.InteractionCallback) (Inbound, bool) {
	if cb.Type != slack.InteractionTypeBlockActions || len(cb.ActionCallback.BlockActions) == 0 {
		return Inbound{}, false
	}
	action := cb.ActionCallback.BlockActions[0]
	return Inbound{
		Kind:      KindCallback,
		Channel:   cb.Channel.ID,
		User:      cb.User.ID,
		Text:      action.Value,
		MessageTS: cb.Container.MessageTs,
	}, true
}

// FromSlashCommand maps "/daytasks add milk" to "/add milk"; a bare command opens the menu.
func FromSlashCommand(cmd slack.SlashCommand) Inbound {
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		text = "start"
	}
	return Inbound{Kind: KindCommand, Channel: cmd.ChannelID, User: cmd.UserID, Text: "/" + strings.TrimPrefix(text, "/")}
}

func (b *Bot) Handle(ctx context.Context, in Inbound) error {
	var (
		screen views.Screen
		err    error
	)
	switch in.Kind {
	case KindCommand:
		screen, err = b.handler.OnCommand(ctx, in.SessionID(), in.User, in.Text)
	case KindCallback:
		screen, err = b.handler.OnCallback(ctx, in.SessionID(), in.User, in.Text)
	default:
		screen, err = b.handler.OnTextMessage(ctx, in.SessionID(), in.User, in.Text)
	}
	if errors.Is(err, update.ErrIgnored) {
		return nil
	}
	if err != nil {
		return err
	}

	opts := MessageOptions(screen)
	if in.Kind == KindCallback && in.MessageTS != "" {
		_, _, _, err = b.api.UpdateMessageContext(ctx, in.Channel, in.MessageTS, opts...)
		return err
	}
	_, _, err = b.api.PostMessageContext(ctx, in.Channel, opts...)
	return err
}

func MessageOptions(s views.Screen) []slack.MsgOption {
	return []slack.MsgOption{
		slack.MsgOptionText(s.Text, false),
		slack.MsgOptionBlocks(Blocks(s)...),
	}
}

// Blocks renders the text as a section and the buttons as action blocks of at most five.
func Blocks(s views.Screen) []slack.Block {
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.PlainTextType, s.Text, true, false), nil, nil),
	}
	n := 0
	for _, row := range s.Buttons {
		for start := 0; start < len(row); start += maxButtonsPerBlock {
			end := min(start+maxButtonsPerBlock, len(row))
			elements := make([]slack.BlockElement, 0, end-start)
			for _, btn := range row[start:end] {
				label := slack.NewTextBlockObject(slack.PlainTextType, btn.Label, true, false)
				elements = append(elements, slack.NewButtonBlockElement(btn.Payload, btn.Payload, label))
			}
			blocks = append(blocks, slack.NewActionBlock(fmt.Sprintf("row-%d", n), elements...))
			n++
		}
	}
	return blocks
}
