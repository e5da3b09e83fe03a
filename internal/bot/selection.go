package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chess-trainer-bot/internal/domain"
	"chess-trainer-bot/internal/logger"
	"chess-trainer-bot/internal/service"
)

// HandleSelection resolves a deletion button press. The payload carries
// the record's id, so a press on a keyboard rendered before other
// deletions still removes the intended record or reports it gone.
func (b *Bot) HandleSelection(ctx context.Context, u User, kind domain.Kind, id int64) string {
	if !b.isTrainer(u) {
		return textAccessDenied
	}
	confirmation := b.confirmationFor(kind, id)
	if err := b.records.RemoveByID(kind, id); err != nil {
		if errors.Is(err, service.ErrStaleSelection) {
			return textStaleRecord
		}
		logger.Error(ctx, "bot", "record.delete.failed",
			slog.String("kind", string(kind)),
			slog.Int64("record_id", id),
			slog.String("err", err.Error()),
		)
		return textStoreFailed
	}
	return confirmation
}

// confirmationFor renders the post-deletion notice while the record is
// still present; a concurrent removal just degrades it to the generic
// form.
func (b *Bot) confirmationFor(kind domain.Kind, id int64) string {
	switch kind {
	case domain.KindStudents:
		for _, s := range b.records.Students() {
			if s.ID == id {
				return fmt.Sprintf("🗑 Учня %s видалено.", s.Name)
			}
		}
	case domain.KindSchedule:
		for _, e := range b.records.Schedule() {
			if e.ID == id {
				return fmt.Sprintf("🗑 Заняття %s %s видалено.", e.Day, e.Time)
			}
		}
	case domain.KindHomework:
		return "🗑 Завдання видалено."
	case domain.KindNews:
		for _, n := range b.records.News() {
			if n.ID == id {
				return fmt.Sprintf("🗑 Новину «%s» видалено.", n.Title)
			}
		}
	case domain.KindMaterials:
		for _, m := range b.records.Materials() {
			if m.ID == id {
				return fmt.Sprintf("🗑 Матеріал «%s» видалено.", m.Title)
			}
		}
	}
	return "🗑 Запис видалено."
}
