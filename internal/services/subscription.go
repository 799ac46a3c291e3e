package services

import (
	"context"
	"fmt"

	"github.com/harentsoaR/ayursutra-api/internal/messaging"
)

// watch runs refresh once straight away and again after every signal on
// channel, until the returned cancel func is called or ctx ends. Signals that
// pile up while a refresh runs collapse into one. refresh is never called
// concurrently with itself.
func watch(ctx context.Context, b messaging.Broker, channel string, refresh func(context.Context)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	signals, err := b.Subscribe(ctx, channel)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	go func() {
		refresh(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
			drain:
				for {
					select {
					case _, ok := <-signals:
						if !ok {
							return
						}
					default:
						break drain
					}
				}
				if ctx.Err() != nil {
					return
				}
				refresh(ctx)
			}
		}
	}()

	return cancel, nil
}
