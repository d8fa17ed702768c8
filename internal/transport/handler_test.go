package transport

import (
	"context"
	"testing"

	"github.com/sandeepkv93/daytasks/internal/views"
)

type recorder struct {
	last string
}

func (r *recorder) OnCommand(_ context.Context, _, _, text string) (views.Screen, error) {
	r.last = "command:" + text
	return views.Screen{}, nil
}

func (r *recorder) OnCallback(_ context.Context, _, _, payload string) (views.Screen, error) {
	r.last = "callback:" + payload
	return views.Screen{}, nil
}

func (r *recorder) OnTextMessage(_ context.Context, _, _, text string) (views.Screen, error) {
	r.last = "text:" + text
	return views.Screen{}, nil
}

func TestMessageRoutesCommands(t *testing.T) {
	cases := map[string]string{
		"/start":     "command:/start",
		"  /add x":   "command:  /add x",
		"Buy milk":   "text:Buy milk",
		"milk /eggs": "text:milk /eggs",
	}
	for in, want := range cases {
		r := &recorder{}
		if _, err := Message(context.Background(), r, "s", "u", in); err != nil {
			t.Fatalf("message %q: %v", in, err)
		}
		if r.last != want {
			t.Fatalf("message %q routed to %q, want %q", in, r.last, want)
		}
	}
}
