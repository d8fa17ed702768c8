package transport

import (
	"context"
	"strings"

	"github.com/sandeepkv93/daytasks/internal/views"
)

// Handler is the controller surface every transport drives.
type Handler interface {
	OnCommand(ctx context.Context, sessionID, userID, text string) (views.Screen, error)
	OnCallback(ctx context.Context, sessionID, userID, payload string) (views.Screen, error)
	OnTextMessage(ctx context.Context, sessionID, userID, text string) (views.Screen, error)
}

func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}

// Message routes a typed message: slash commands go to OnCommand, the rest is free text.
func Message(ctx context.Context, h Handler, sessionID, userID, text string) (views.Screen, error) {
	if IsCommand(text) {
		return h.OnCommand(ctx, sessionID, userID, text)
	}
	return h.OnTextMessage(ctx, sessionID, userID, text)
}
