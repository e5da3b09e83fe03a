// Package bot implements the trainer's conversational flow: the menu
// tree, the record entry prompts and the deletion keyboards. Handlers
// are pure with respect to transport: they take the incoming user and
// text and return replies plus the next conversation state, which makes
// every transition testable without a live bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"chess-trainer-bot/internal/domain"
	"chess-trainer-bot/internal/logger"
	"chess-trainer-bot/internal/service"
	"chess-trainer-bot/internal/telegram/keyboard"
	"chess-trainer-bot/internal/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// User identifies the sender of an update.
type User struct {
	ID   int64
	Name string
}

// Reply is one outgoing message. Markup is optional; HTML marks the
// text for rich-markup rendering.
type Reply struct {
	Text   string
	Markup *tele.ReplyMarkup
	HTML   bool
}

type Bot struct {
	records   *service.Records
	broadcast *service.Broadcaster
	sessions  *state.Manager
	trainerID int64
	now       func() time.Time
}

func New(records *service.Records, broadcast *service.Broadcaster, trainerID int64) *Bot {
	return &Bot{
		records:   records,
		broadcast: broadcast,
		sessions:  state.NewManager(),
		trainerID: trainerID,
		now:       time.Now,
	}
}

func (b *Bot) isTrainer(u User) bool { return u.ID == b.trainerID }

// HandleStart processes /start. The trainer enters the main menu; any
// other sender is registered as a parent and the conversation ends.
func (b *Bot) HandleStart(ctx context.Context, u User) []Reply {
	if !b.isTrainer(u) {
		b.sessions.Clear(u.ID)
		if err := b.records.UpsertParent(u.ID, u.Name); err != nil {
			logger.Error(ctx, "bot", "parent.register.failed",
				slog.Int64("user_id", u.ID),
				slog.String("err", err.Error()),
			)
			return []Reply{{Text: textStoreFailed}}
		}
		return []Reply{{Text: parentGreeting(u.Name, u.ID), HTML: true}}
	}
	b.sessions.Set(u.ID, StateMainMenu)
	return []Reply{{Text: trainerGreeting(u.Name), Markup: mainMenuKeyboard()}}
}

// Dispatch routes a plain text message through the sender's current
// conversation state.
func (b *Bot) Dispatch(ctx context.Context, u User, text string) []Reply {
	st := b.sessions.Get(u.ID)
	if st == state.Idle {
		if b.isTrainer(u) {
			return []Reply{{Text: textStartHint}}
		}
		return []Reply{{Text: textAccessDenied}}
	}
	if !b.isTrainer(u) {
		b.sessions.Clear(u.ID)
		return []Reply{{Text: textAccessDenied}}
	}

	handler, ok := b.handlers()[st]
	if !ok {
		logger.Warn(ctx, "bot", "session.state.unknown",
			slog.String("state", string(st)),
			slog.Int64("user_id", u.ID),
		)
		b.sessions.Set(u.ID, StateMainMenu)
		return b.toMainMenu()
	}
	replies, next := handler(ctx, u, text)
	b.sessions.Set(u.ID, next)
	return replies
}

type handlerFunc func(ctx context.Context, u User, text string) ([]Reply, state.State)

func (b *Bot) handlers() map[state.State]handlerFunc {
	return map[state.State]handlerFunc{
		StateMainMenu:      b.handleMainMenu,
		StateStudentsMenu:  b.handleStudentsMenu,
		StateAddStudent:    b.handleAddStudent,
		StateScheduleMenu:  b.handleScheduleMenu,
		StateAddSchedule:   b.handleAddSchedule,
		StateHomeworkMenu:  b.handleHomeworkMenu,
		StateAddHomework:   b.handleAddHomework,
		StateNewsMenu:      b.handleNewsMenu,
		StateAddNews:       b.handleAddNews,
		StateMaterialsMenu: b.handleMaterialsMenu,
		StateAddMaterial:   b.handleAddMaterial,
		StateChatMenu:      b.handleChatMenu,
		StateBroadcast:     b.handleBroadcastText,
	}
}

func (b *Bot) toMainMenu() []Reply {
	return []Reply{{Text: "Головне меню:", Markup: mainMenuKeyboard()}}
}

func (b *Bot) handleMainMenu(ctx context.Context, u User, text string) ([]Reply, state.State) {
	switch text {
	case BtnStudents:
		return []Reply{{Text: "👦 Управління учнями:", Markup: studentsKeyboard()}}, StateStudentsMenu
	case BtnSchedule:
		return []Reply{{Text: "📅 Управління розкладом:", Markup: scheduleKeyboard()}}, StateScheduleMenu
	case BtnHomework:
		return []Reply{{Text: "📚 Управління домашніми завданнями:", Markup: homeworkKeyboard()}}, StateHomeworkMenu
	case BtnNews:
		return []Reply{{Text: "📢 Управління новинами:", Markup: newsKeyboard()}}, StateNewsMenu
	case BtnMaterials:
		return []Reply{{Text: "🎓 Управління матеріалами:", Markup: materialsKeyboard()}}, StateMaterialsMenu
	case BtnChat:
		menu := fmt.Sprintf("💬 Комунікація з батьками\n👥 Зареєстровано батьків: %d", b.records.ParentCount())
		return []Reply{{Text: menu, Markup: chatKeyboard()}}, StateChatMenu
	default:
		return b.toMainMenu(), StateMainMenu
	}
}

func (b *Bot) handleStudentsMenu(ctx context.Context, u User, text string) ([]Reply, state.State) {
	switch text {
	case BtnBack:
		return b.toMainMenu(), StateMainMenu
	case BtnListStudents:
		return []Reply{{Text: renderStudents(b.records.Students()), Markup: studentsKeyboard()}}, StateStudentsMenu
	case BtnAddStudent:
		prompt := "Введіть дані учня у форматі:\n<b>Ім'я | Рівень | Телефон батьків</b>\n\nНаприклад: Іван Петренко | Початківець | +380501234567"
		return []Reply{{Text: prompt, Markup: backKeyboard(), HTML: true}}, StateAddStudent
	case BtnDelStudent:
		return b.deletionMenu(domain.KindStudents), StateStudentsMenu
	default:
		return []Reply{{Text: "👦 Управління учнями:", Markup: studentsKeyboard()}}, StateStudentsMenu
	}
}

func (b *Bot) handleAddStudent(ctx context.Context, u User, text string) ([]Reply, state.State) {
	if text == BtnBack {
		return b.toMainMenu(), StateMainMenu
	}
	s, err := b.records.AddStudent(text, b.now())
	if err != nil {
		if errors.Is(err, domain.ErrMalformedInput) {
			notice := "⚠️ Невірний формат. Потрібно: Ім'я | Рівень | Телефон\nСпробуйте ще раз або поверніться в меню."
			return []Reply{{Text: notice, Markup: backKeyboard()}}, StateAddStudent
		}
		return []Reply{{Text: textStoreFailed, Markup: studentsKeyboard()}}, StateStudentsMenu
	}
	done := fmt.Sprintf("✅ Учня %s додано!", s.Name)
	return []Reply{{Text: done, Markup: studentsKeyboard()}}, StateStudentsMenu
}

func (b *Bot) handleScheduleMenu(ctx context.Context, u User, text string) ([]Reply, state.State) {
	switch text {
	case BtnBack:
		return b.toMainMenu(), StateMainMenu
	case BtnListSchedule:
		return []Reply{{Text: renderSchedule(b.records.Schedule()), Markup: scheduleKeyboard()}}, StateScheduleMenu
	case BtnAddSchedule:
		prompt := "Введіть заняття у форматі:\n<b>День | Час | Група | Місце</b>\n\nНаприклад: Пн | 16:00 | Початківці | Клуб на Хрещатику"
		return []Reply{{Text: prompt, Markup: backKeyboard(), HTML: true}}, StateAddSchedule
	case BtnDelSchedule:
		return b.deletionMenu(domain.KindSchedule), StateScheduleMenu
	default:
		return []Reply{{Text: "📅 Управління розкладом:", Markup: scheduleKeyboard()}}, StateScheduleMenu
	}
}

func (b *Bot) handleAddSchedule(ctx context.Context, u User, text string) ([]Reply, state.State) {
	if text == BtnBack {
		return b.toMainMenu(), StateMainMenu
	}
	e, err := b.records.AddScheduleEntry(text)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedInput) {
			notice := "⚠️ Невірний формат. Потрібно: День | Час | Група | Місце\nСпробуйте ще раз або поверніться в меню."
			return []Reply{{Text: notice, Markup: backKeyboard()}}, StateAddSchedule
		}
		return []Reply{{Text: textStoreFailed, Markup: scheduleKeyboard()}}, StateScheduleMenu
	}
	done := fmt.Sprintf("✅ Заняття %s %s додано!", e.Day, e.Time)
	return []Reply{{Text: done, Markup: scheduleKeyboard()}}, StateScheduleMenu
}

func (b *Bot) handleHomeworkMenu(ctx context.Context, u User, text string) ([]Reply, state.State) {
	switch text {
	case BtnBack:
		return b.toMainMenu(), StateMainMenu
	case BtnListHomework:
		return []Reply{{Text: renderHomework(b.records.HomeworkList()), Markup: homeworkKeyboard()}}, StateHomeworkMenu
	case BtnAddHomework:
		prompt := "Введіть завдання у форматі:\n<b>Група | Завдання | Дедлайн</b>\n\nНаприклад: Початківці | Розв'язати задачі 1-10 | 05.09.2026"
		return []Reply{{Text: prompt, Markup: backKeyboard(), HTML: true}}, StateAddHomework
	case BtnDelHomework:
		return b.deletionMenu(domain.KindHomework), StateHomeworkMenu
	default:
		return []Reply{{Text: "📚 Управління домашніми завданнями:", Markup: homeworkKeyboard()}}, StateHomeworkMenu
	}
}

func (b *Bot) handleAddHomework(ctx context.Context, u User, text string) ([]Reply, state.State) {
	if text == BtnBack {
		return b.toMainMenu(), StateMainMenu
	}
	h, err := b.records.AddHomework(text, b.now())
	if err != nil {
		if errors.Is(err, domain.ErrMalformedInput) {
			notice := "⚠️ Невірний формат. Потрібно: Група | Завдання | Дедлайн\nСпробуйте ще раз або поверніться в меню."
			return []Reply{{Text: notice, Markup: backKeyboard()}}, StateAddHomework
		}
		return []Reply{{Text: textStoreFailed, Markup: homeworkKeyboard()}}, StateHomeworkMenu
	}
	sent, _ := b.broadcast.Broadcast(ctx, b.records.ParentIDs(), func(int64) string {
		return homeworkBroadcast(h)
	})
	done := fmt.Sprintf("✅ Завдання додано! Надіслано %d батькам.", sent)
	return []Reply{{Text: done, Markup: homeworkKeyboard()}}, StateHomeworkMenu
}

func (b *Bot) handleNewsMenu(ctx context.Context, u User, text string) ([]Reply, state.State) {
	switch text {
	case BtnBack:
		return b.toMainMenu(), StateMainMenu
	case BtnListNews:
		return []Reply{{Text: renderNews(b.records.News()), Markup: newsKeyboard()}}, StateNewsMenu
	case BtnAddNews:
		prompt := "Введіть новину у форматі:\n<b>Заголовок | Текст</b>\n\nНаприклад: Турнір у вересні | Запис відкрито до кінця місяця"
		return []Reply{{Text: prompt, Markup: backKeyboard(), HTML: true}}, StateAddNews
	case BtnDelNews:
		return b.deletionMenu(domain.KindNews), StateNewsMenu
	default:
		return []Reply{{Text: "📢 Управління новинами:", Markup: newsKeyboard()}}, StateNewsMenu
	}
}

func (b *Bot) handleAddNews(ctx context.Context, u User, text string) ([]Reply, state.State) {
	if text == BtnBack {
		return b.toMainMenu(), StateMainMenu
	}
	n, err := b.records.AddNewsItem(text, b.now())
	if err != nil {
		if errors.Is(err, domain.ErrMalformedInput) {
			notice := "⚠️ Невірний формат. Потрібно: Заголовок | Текст\nСпробуйте ще раз або поверніться в меню."
			return []Reply{{Text: notice, Markup: backKeyboard()}}, StateAddNews
		}
		return []Reply{{Text: textStoreFailed, Markup: newsKeyboard()}}, StateNewsMenu
	}
	sent, _ := b.broadcast.Broadcast(ctx, b.records.ParentIDs(), func(int64) string {
		return newsBroadcast(n)
	})
	done := fmt.Sprintf("✅ Новину додано! Надіслано %d батькам.", sent)
	return []Reply{{Text: done, Markup: newsKeyboard()}}, StateNewsMenu
}

func (b *Bot) handleMaterialsMenu(ctx context.Context, u User, text string) ([]Reply, state.State) {
	switch text {
	case BtnBack:
		return b.toMainMenu(), StateMainMenu
	case BtnListMaterials:
		return []Reply{{Text: renderMaterials(b.records.Materials()), Markup: materialsKeyboard()}}, StateMaterialsMenu
	case BtnAddMaterial:
		prompt := "Введіть матеріал у форматі:\n<b>Назва | Посилання | Категорія</b>\n\nНаприклад: Дебюти для початківців | https://example.com | Дебюти"
		return []Reply{{Text: prompt, Markup: backKeyboard(), HTML: true}}, StateAddMaterial
	case BtnDelMaterial:
		return b.deletionMenu(domain.KindMaterials), StateMaterialsMenu
	default:
		return []Reply{{Text: "🎓 Управління матеріалами:", Markup: materialsKeyboard()}}, StateMaterialsMenu
	}
}

func (b *Bot) handleAddMaterial(ctx context.Context, u User, text string) ([]Reply, state.State) {
	if text == BtnBack {
		return b.toMainMenu(), StateMainMenu
	}
	m, err := b.records.AddMaterial(text, b.now())
	if err != nil {
		if errors.Is(err, domain.ErrMalformedInput) {
			notice := "⚠️ Невірний формат. Потрібно: Назва | Посилання | Категорія\nСпробуйте ще раз або поверніться в меню."
			return []Reply{{Text: notice, Markup: backKeyboard()}}, StateAddMaterial
		}
		return []Reply{{Text: textStoreFailed, Markup: materialsKeyboard()}}, StateMaterialsMenu
	}
	done := fmt.Sprintf("✅ Матеріал «%s» додано!", m.Title)
	return []Reply{{Text: done, Markup: materialsKeyboard()}}, StateMaterialsMenu
}

func (b *Bot) handleChatMenu(ctx context.Context, u User, text string) ([]Reply, state.State) {
	switch text {
	case BtnBack:
		return b.toMainMenu(), StateMainMenu
	case BtnListParents:
		return []Reply{{Text: renderParents(b.records.Parents()), Markup: chatKeyboard()}}, StateChatMenu
	case BtnBroadcast:
		if b.records.ParentCount() == 0 {
			return []Reply{{Text: "📭 Жоден батько ще не зареєструвався.", Markup: chatKeyboard()}}, StateChatMenu
		}
		prompt := "Введіть текст повідомлення для розсилки всім батькам:"
		return []Reply{{Text: prompt, Markup: backKeyboard()}}, StateBroadcast
	default:
		menu := fmt.Sprintf("💬 Комунікація з батьками\n👥 Зареєстровано батьків: %d", b.records.ParentCount())
		return []Reply{{Text: menu, Markup: chatKeyboard()}}, StateChatMenu
	}
}

func (b *Bot) handleBroadcastText(ctx context.Context, u User, text string) ([]Reply, state.State) {
	if text == BtnBack {
		return b.toMainMenu(), StateMainMenu
	}
	body := trainerBroadcast(text)
	sent, failed := b.broadcast.Broadcast(ctx, b.records.ParentIDs(), func(int64) string {
		return body
	})
	summary := fmt.Sprintf("✅ Розіслано %d батькам.", sent)
	if failed > 0 {
		summary = fmt.Sprintf("✅ Розіслано %d батькам, не доставлено %d.", sent, failed)
	}
	return []Reply{{Text: summary, Markup: chatKeyboard()}}, StateChatMenu
}

// deletionMenu builds an inline keyboard where every button carries the
// record's id, so a press stays valid even if the list shifts before it
// arrives.
func (b *Bot) deletionMenu(kind domain.Kind) []Reply {
	var (
		btns   []keyboard.InlineBtn
		prompt string
		empty  string
	)
	unique := "del_" + string(kind)
	switch kind {
	case domain.KindStudents:
		prompt, empty = "Оберіть учня для видалення:", "📭 Список учнів порожній."
		for _, s := range b.records.Students() {
			btns = append(btns, keyboard.InlineBtn{
				Text:   s.Name,
				Unique: unique,
				Data:   strconv.FormatInt(s.ID, 10),
			})
		}
	case domain.KindSchedule:
		prompt, empty = "Оберіть заняття для видалення:", "📭 Розклад поки порожній."
		for _, e := range b.records.Schedule() {
			btns = append(btns, keyboard.InlineBtn{
				Text:   fmt.Sprintf("%s %s — %s", e.Day, e.Time, e.Group),
				Unique: unique,
				Data:   strconv.FormatInt(e.ID, 10),
			})
		}
	case domain.KindHomework:
		prompt, empty = "Оберіть завдання для видалення:", "📭 Домашніх завдань немає."
		for _, h := range b.records.HomeworkList() {
			btns = append(btns, keyboard.InlineBtn{
				Text:   fmt.Sprintf("[%s] %s", h.Group, truncateLabel(h.Task, homeworkButtonLimit)),
				Unique: unique,
				Data:   strconv.FormatInt(h.ID, 10),
			})
		}
	case domain.KindNews:
		prompt, empty = "Оберіть новину для видалення:", "📭 Новин поки немає."
		for _, n := range b.records.News() {
			btns = append(btns, keyboard.InlineBtn{
				Text:   n.Title,
				Unique: unique,
				Data:   strconv.FormatInt(n.ID, 10),
			})
		}
	case domain.KindMaterials:
		prompt, empty = "Оберіть матеріал для видалення:", "📭 Матеріалів поки немає."
		for _, m := range b.records.Materials() {
			btns = append(btns, keyboard.InlineBtn{
				Text:   m.Title,
				Unique: unique,
				Data:   strconv.FormatInt(m.ID, 10),
			})
		}
	}
	if len(btns) == 0 {
		return []Reply{{Text: empty}}
	}
	return []Reply{{Text: prompt, Markup: keyboard.Inline(btns)}}
}
