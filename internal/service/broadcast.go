package service

import (
	"context"
	"log/slog"
	"time"

	"chess-trainer-bot/internal/logger"
)

// Sender delivers one outbound message to a chat.
type Sender interface {
	SendTo(ctx context.Context, chatID int64, text string) error
}

// Broadcaster fans a message out to every registered parent. Each
// recipient gets at most one delivery attempt per invocation; individual
// failures are counted, never retried, and never abort the iteration.
type Broadcaster struct {
	sender  Sender
	timeout time.Duration
}

// NewBroadcaster builds a broadcaster with a bounded per-recipient send timeout.
func NewBroadcaster(sender Sender, timeout time.Duration) *Broadcaster {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Broadcaster{sender: sender, timeout: timeout}
}

// Broadcast sends render(id) to every id and reports sent/failed counts.
// Failing recipient ids are surfaced in the operator log.
func (b *Broadcaster) Broadcast(ctx context.Context, ids []int64, render func(chatID int64) string) (sent, failed int) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	for _, id := range ids {
		if err := b.sendOne(ctx, id, render(id)); err != nil {
			failed++
			logger.TG.Warn("broadcast delivery failed",
				slog.String("event", "broadcast.send"),
				slog.Int64("recipient", id),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
			continue
		}
		sent++
	}
	logger.TG.Info("broadcast finished",
		slog.String("event", "broadcast.summary"),
		slog.Int("recipients", len(ids)),
		slog.Int("sent", sent),
		slog.Int("failed", failed),
		slog.Duration("duration", time.Since(start).Round(time.Millisecond)),
	)
	return sent, failed
}

// sendOne performs a single bounded delivery attempt. A timeout counts as
// a failure, not a crash; the Sender call itself is left to finish in the
// background once abandoned.
func (b *Broadcaster) sendOne(ctx context.Context, chatID int64, text string) error {
	sendCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- b.sender.SendTo(sendCtx, chatID, text)
	}()

	select {
	case err := <-done:
		return err
	case <-sendCtx.Done():
		return sendCtx.Err()
	}
}
