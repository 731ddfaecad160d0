package bot

import (
	"context"
	"sync"

	"github.com/aretw0/arbor/internal/telegram"
)

// workerQueue is the backlog each worker may hold before Run blocks.
const workerQueue = 16

// Run feeds events to a fixed pool of workers until the channel is closed or
// ctx is done. Every chat is pinned to one worker, so the updates of a chat
// are handled one at a time in the order they arrived.
func (d *Dispatcher) Run(ctx context.Context, events <-chan telegram.Event, workers int) {
	if workers < 1 {
		workers = 1
	}
	queues := make([]chan telegram.Event, workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan telegram.Event, workerQueue)
		wg.Add(1)
		go func(worker int, queue <-chan telegram.Event) {
			defer wg.Done()
			for ev := range queue {
				if ctx.Err() != nil {
					return
				}
				if err := d.Handle(ctx, ev); err != nil {
					d.logger.Error("Failed to handle update",
						"worker", worker,
						"conversation_id", ev.ConversationID(),
						"err", err)
				}
			}
		}(i, queues[i])
	}
	defer func() {
		for _, q := range queues {
			close(q)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			select {
			case queues[shard(ev.ChatID, workers)] <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// shard picks the worker of a chat. Group chat ids are negative.
func shard(chatID int64, workers int) int {
	s := chatID % int64(workers)
	if s < 0 {
		s = -s
	}
	return int(s)
}
