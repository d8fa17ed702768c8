package transport

import (
	"context"
	"hash/fnv"
	"sync"
)

// Dispatcher fans events out to a fixed set of workers. Events with the same key
// always land on the same worker, so one chat is handled in arrival order while
// different chats run concurrently.
type Dispatcher[T any] struct {
	shards []chan T
	key    func(T) string
	handle func(context.Context, T)
	wg     sync.WaitGroup
}

func NewDispatcher[T any](workers, buffer int, key func(T) string, handle func(context.Context, T)) *Dispatcher[T] {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	d := &Dispatcher[T]{shards: make([]chan T, workers), key: key, handle: handle}
	for i := range d.shards {
		d.shards[i] = make(chan T, buffer)
	}
	return d
}

// Start launches the workers. They exit once Close is called and their queues drain.
func (d *Dispatcher[T]) Start(ctx context.Context) {
	for _, ch := range d.shards {
		d.wg.Add(1)
		go func(ch chan T) {
			defer d.wg.Done()
			for ev := range ch {
				d.handle(ctx, ev)
			}
		}(ch)
	}
}

// Submit queues ev, or gives up when ctx is done.
func (d *Dispatcher[T]) Submit(ctx context.Context, ev T) bool {
	h := fnv.New32a()
	_, _ = h.Write([]byte(d.key(ev)))
	ch := d.shards[h.Sum32()%uint32(len(d.shards))]
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close stops accepting events and waits for in-flight ones.
func (d *Dispatcher[T]) Close() {
	for _, ch := range d.shards {
		close(ch)
	}
	d.wg.Wait()
}
