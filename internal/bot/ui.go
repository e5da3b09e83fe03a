package bot

import (
	"fmt"
	"strings"

	"chess-trainer-bot/internal/domain"
	"chess-trainer-bot/internal/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Menu button labels. Dispatch matches incoming text against these
// verbatim, so they live in one place.
const (
	BtnStudents  = "📋 Список учнів"
	BtnSchedule  = "📅 Розклад занять"
	BtnHomework  = "📚 Домашні завдання"
	BtnNews      = "📢 Новини/Оголошення"
	BtnMaterials = "🎓 Матеріали"
	BtnChat      = "💬 Чат з батьками"
	BtnBack      = "⬅️ Головне меню"

	BtnAddStudent    = "➕ Додати учня"
	BtnDelStudent    = "🗑 Видалити учня"
	BtnListStudents  = "📄 Показати всіх"
	BtnAddSchedule   = "➕ Додати заняття"
	BtnListSchedule  = "📋 Показати розклад"
	BtnDelSchedule   = "🗑 Видалити заняття"
	BtnAddHomework   = "➕ Задати домашнє"
	BtnListHomework  = "📋 Показати завдання"
	BtnDelHomework   = "🗑 Видалити завдання"
	BtnAddNews       = "➕ Додати новину"
	BtnListNews      = "📋 Показати новини"
	BtnDelNews       = "🗑 Видалити новину"
	BtnAddMaterial   = "➕ Додати матеріал"
	BtnListMaterials = "📋 Показати матеріали"
	BtnDelMaterial   = "🗑 Видалити матеріал"
	BtnBroadcast     = "📣 Розіслати всім батькам"
	BtnListParents   = "👥 Список батьків"
)

const (
	textAccessDenied = "⛔️ Цей бот призначений лише для тренера.\nЯкщо ви батько/мати учня — зверніться до тренера для доступу."
	textStartHint    = "Натисніть /start, щоб відкрити меню."
	textStaleRecord  = "❌ Запис уже не існує."
	textStoreFailed  = "⚠️ Не вдалося зберегти дані. Спробуйте ще раз."

	homeworkButtonLimit = 30
)

func mainMenuKeyboard() *tele.ReplyMarkup {
	return keyboard.Reply(
		[]string{BtnStudents, BtnSchedule},
		[]string{BtnHomework, BtnNews},
		[]string{BtnMaterials, BtnChat},
	)
}

func backKeyboard() *tele.ReplyMarkup {
	return keyboard.Reply([]string{BtnBack})
}

func studentsKeyboard() *tele.ReplyMarkup {
	return keyboard.Reply(
		[]string{BtnAddStudent, BtnDelStudent},
		[]string{BtnListStudents, BtnBack},
	)
}

func scheduleKeyboard() *tele.ReplyMarkup {
	return keyboard.Reply(
		[]string{BtnAddSchedule, BtnListSchedule},
		[]string{BtnDelSchedule, BtnBack},
	)
}

func homeworkKeyboard() *tele.ReplyMarkup {
	return keyboard.Reply(
		[]string{BtnAddHomework, BtnListHomework},
		[]string{BtnDelHomework, BtnBack},
	)
}

func newsKeyboard() *tele.ReplyMarkup {
	return keyboard.Reply(
		[]string{BtnAddNews, BtnListNews},
		[]string{BtnDelNews, BtnBack},
	)
}

func materialsKeyboard() *tele.ReplyMarkup {
	return keyboard.Reply(
		[]string{BtnAddMaterial, BtnListMaterials},
		[]string{BtnDelMaterial, BtnBack},
	)
}

func chatKeyboard() *tele.ReplyMarkup {
	return keyboard.Reply(
		[]string{BtnBroadcast, BtnListParents},
		[]string{BtnBack},
	)
}

func trainerGreeting(name string) string {
	return fmt.Sprintf("♟️ Вітаємо, тренере %s!\n\nОберіть розділ у меню нижче 👇", name)
}

func parentGreeting(name string, id int64) string {
	return fmt.Sprintf(
		"👋 Вітаємо, %s!\n\nВи зареєстровані як батько/мати учня.\nТренер зможе надсилати вам повідомлення, розклад та домашні завдання.\n\nВаш ID: <code>%d</code>",
		name, id,
	)
}

func renderStudents(list []domain.Student) string {
	if len(list) == 0 {
		return "📭 Список учнів порожній."
	}
	var b strings.Builder
	b.WriteString("📋 Список учнів:\n\n")
	for i, s := range list {
		fmt.Fprintf(&b, "%d. %s — %s | %s\n", i+1, s.Name, s.Level, s.Phone)
	}
	return b.String()
}

func renderSchedule(list []domain.ScheduleEntry) string {
	if len(list) == 0 {
		return "📭 Розклад поки порожній."
	}
	var b strings.Builder
	b.WriteString("📅 Розклад занять:\n\n")
	for _, e := range domain.SortedSchedule(list) {
		fmt.Fprintf(&b, "📌 %s %s — %s (%s)\n", e.Day, e.Time, e.Group, e.Place)
	}
	return b.String()
}

func renderHomework(list []domain.Homework) string {
	if len(list) == 0 {
		return "📭 Домашніх завдань немає."
	}
	var b strings.Builder
	b.WriteString("📚 Домашні завдання:\n\n")
	for i, h := range list {
		fmt.Fprintf(&b, "%d. [%s] %s\n   📅 Здати до: %s\n\n", i+1, h.Group, h.Task, h.Deadline)
	}
	return b.String()
}

func renderNews(list []domain.NewsItem) string {
	if len(list) == 0 {
		return "📭 Новин поки немає."
	}
	var b strings.Builder
	b.WriteString("📢 Новини та оголошення:\n\n")
	for i, n := range list {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   📅 %s\n\n", i+1, n.Title, n.Text, n.Date)
	}
	return b.String()
}

func renderMaterials(list []domain.Material) string {
	if len(list) == 0 {
		return "📭 Матеріалів поки немає."
	}
	var b strings.Builder
	b.WriteString("🎓 Навчальні матеріали:\n\n")
	for i, m := range list {
		fmt.Fprintf(&b, "%d. %s\n   🔗 %s\n   📁 %s\n\n", i+1, m.Title, m.Link, m.Category)
	}
	return b.String()
}

func renderParents(parents map[string]string) string {
	if len(parents) == 0 {
		return "📭 Жоден батько ще не зареєструвався."
	}
	var b strings.Builder
	b.WriteString("👥 Зареєстровані батьки:\n\n")
	for id, name := range parents {
		fmt.Fprintf(&b, "• %s (ID: %s)\n", name, id)
	}
	return b.String()
}

func homeworkBroadcast(h domain.Homework) string {
	return fmt.Sprintf(
		"📚 Нове домашнє завдання!\n\n👥 Група: %s\n📝 Завдання: %s\n📅 Здати до: %s",
		h.Group, h.Task, h.Deadline,
	)
}

func newsBroadcast(n domain.NewsItem) string {
	return fmt.Sprintf("📢 %s\n\n%s", n.Title, n.Text)
}

func trainerBroadcast(text string) string {
	return "📣 Повідомлення від тренера:\n\n" + text
}

// truncateLabel shortens button captions so deletion keyboards stay
// readable; counts runes, not bytes.
func truncateLabel(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
