// Package middleware holds the global handler chain: panic recovery,
// update receipt logging, and per-user inbound throttling.
package middleware

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"chess-trainer-bot/internal/logger"
)

// Recover catches panics in handlers and prevents the bot from crashing.
func Recover(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				logger.TG.Error("panic recovered",
					slog.String("event", "tg.panic"),
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()
		return next(c)
	}
}

// Logging logs a single receipt line per update and stores the request
// correlation id on the telebot context for downstream handlers.
func Logging(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		chatID, userID := int64(0), int64(0)
		if chat := c.Chat(); chat != nil {
			chatID = chat.ID
		}
		if user := c.Sender(); user != nil {
			userID = user.ID
		}

		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)

		ctx := logger.WithRID(logger.WithUpdateMeta(nil, upd.ID, userID, chatID), rid)

		attrs := []slog.Attr{slog.String("status", "ok")}
		switch {
		case upd.Callback != nil:
			attrs = append(attrs, slog.String("kind", "callback"),
				slog.String("payload", logger.SanitizeLimit(upd.Callback.Data, 128)))
		case upd.Message != nil:
			attrs = append(attrs, slog.String("kind", "message"),
				slog.String("payload", logger.SanitizeLimit(c.Text(), 256)))
		}
		logger.Debug(ctx, "tg", "update.received", attrs...)

		start := time.Now()
		err := next(c)
		if err != nil {
			logger.Error(ctx, "tg", "handler.failed",
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
				slog.Duration("duration", time.Since(start).Round(time.Millisecond)),
			)
		}
		return err
	}
}

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval time.Duration
	Exclude  map[string]struct{}
}

// RateLimit returns a middleware that enforces a minimum interval between
// updates from the same user. Limited updates are dropped silently.
func RateLimit(opts RateLimitOptions) tele.MiddlewareFunc {
	var (
		lastSeen   = make(map[int64]time.Time)
		lastSeenMu sync.Mutex
	)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}

			upd := c.Update()
			kind := "other"
			switch {
			case upd.Callback != nil:
				kind = "callback"
			case upd.Message != nil:
				kind = "message"
			}
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			now := time.Now()
			lastSeenMu.Lock()
			if last, ok := lastSeen[user.ID]; ok && now.Sub(last) < opts.Interval {
				lastSeenMu.Unlock()
				logger.TG.Warn("rate limit",
					slog.String("event", "tg.rate_limit"),
					slog.Int64("user_id", user.ID),
				)
				return nil
			}
			lastSeen[user.ID] = now
			lastSeenMu.Unlock()
			return next(c)
		}
	}
}
