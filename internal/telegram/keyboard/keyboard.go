// Package keyboard builds reply and inline keyboards from plain data.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes one inline button with its callback unique and payload.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// Reply builds a resized reply keyboard from rows of button labels.
func Reply(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	keyboard := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tele.Btn, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// Inline builds an inline keyboard with each button on its own row.
func Inline(buttons []InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(buttons))
	for i, b := range buttons {
		inline[i] = []tele.InlineButton{*markup.Data(b.Text, b.Unique, b.Data).Inline()}
	}
	markup.InlineKeyboard = inline
	return markup
}
