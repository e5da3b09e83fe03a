package bot

import (
	"context"
	"log/slog"
	"strings"

	"chess-trainer-bot/internal/domain"
	"chess-trainer-bot/internal/logger"
	"chess-trainer-bot/internal/telegram"
	"chess-trainer-bot/internal/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// Routes binds the conversational flow to bot endpoints. Deletion
// callbacks go through a registry keyed by del_<collection> uniques.
func (b *Bot) Routes() []telegram.Route {
	registry := telegram.NewRegistry()
	kinds := []domain.Kind{
		domain.KindStudents,
		domain.KindSchedule,
		domain.KindHomework,
		domain.KindNews,
		domain.KindMaterials,
	}
	for _, kind := range kinds {
		if err := registry.RegisterCallback("del_"+string(kind), b.deleteCallback(kind)); err != nil {
			logger.Warn(context.Background(), "bot", "callback.register.failed",
				slog.String("kind", string(kind)),
				slog.String("err", err.Error()),
			)
		}
	}

	return []telegram.Route{
		{Endpoint: "/start", Handler: b.onStart},
		{Endpoint: tele.OnText, Handler: b.onText},
		{Endpoint: tele.OnCallback, Handler: routeCallback(registry)},
	}
}

func (b *Bot) onStart(c tele.Context) error {
	return sendReplies(c, b.HandleStart(requestContext(c), senderOf(c)))
}

func (b *Bot) onText(c tele.Context) error {
	return sendReplies(c, b.Dispatch(requestContext(c), senderOf(c), strings.TrimSpace(c.Text())))
}

func (b *Bot) deleteCallback(kind domain.Kind) tele.HandlerFunc {
	return func(c tele.Context) error {
		id, err := callbacks.PayloadInt64(c)
		if err != nil {
			return c.Respond(&tele.CallbackResponse{Text: "Невідома дія"})
		}
		text := b.HandleSelection(requestContext(c), senderOf(c), kind, id)
		if err := c.Respond(&tele.CallbackResponse{}); err != nil {
			return err
		}
		// Replace the selection keyboard with the outcome notice.
		return c.Edit(text)
	}
}

func routeCallback(registry *telegram.Registry) tele.HandlerFunc {
	return func(c tele.Context) error {
		handler, ok := registry.Callback(callbacks.Key(c))
		if !ok {
			return registry.CallbackNotFound()(c)
		}
		return handler(c)
	}
}

func sendReplies(c tele.Context, replies []Reply) error {
	for _, r := range replies {
		opts := make([]any, 0, 2)
		if r.Markup != nil {
			opts = append(opts, r.Markup)
		}
		if r.HTML {
			opts = append(opts, tele.ModeHTML)
		}
		if err := c.Send(r.Text, opts...); err != nil {
			return err
		}
	}
	return nil
}

func senderOf(c tele.Context) User {
	from := c.Sender()
	if from == nil {
		return User{}
	}
	name := strings.TrimSpace(from.FirstName + " " + from.LastName)
	if name == "" {
		name = from.Username
	}
	return User{ID: from.ID, Name: name}
}

func requestContext(c tele.Context) context.Context {
	ctx := context.Background()
	if rid, ok := c.Get("rid").(string); ok && rid != "" {
		ctx = logger.WithRID(ctx, rid)
	}
	return ctx
}
