package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"chess-trainer-bot/internal/domain"
	"chess-trainer-bot/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trainerID int64 = 100

var (
	trainer = User{ID: trainerID, Name: "Олег"}
	parent  = User{ID: 7, Name: "Марія Коваль"}
)

type memStore struct {
	data  *domain.Dataset
	saves int
}

func (m *memStore) Load() (*domain.Dataset, error) {
	if m.data == nil {
		return domain.NewDataset(), nil
	}
	return m.data, nil
}

func (m *memStore) Save(d *domain.Dataset) error {
	m.saves++
	m.data = d
	return nil
}

type fakeSender struct {
	mu      sync.Mutex
	failing map[int64]bool
	got     map[int64][]string
}

func newFakeSender() *fakeSender {
	return &fakeSender{failing: map[int64]bool{}, got: map[int64][]string{}}
}

func (f *fakeSender) SendTo(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[chatID] {
		return errors.New("delivery refused")
	}
	f.got[chatID] = append(f.got[chatID], text)
	return nil
}

func newTestBot(t *testing.T) (*Bot, *fakeSender) {
	t.Helper()
	records, err := service.Open(&memStore{})
	require.NoError(t, err)
	sender := newFakeSender()
	b := New(records, service.NewBroadcaster(sender, time.Second), trainerID)
	b.now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}
	return b, sender
}

func texts(replies []Reply) string {
	parts := make([]string, len(replies))
	for i, r := range replies {
		parts[i] = r.Text
	}
	return strings.Join(parts, "\n")
}

func TestStartTrainerOpensMainMenu(t *testing.T) {
	b, _ := newTestBot(t)

	replies := b.HandleStart(context.Background(), trainer)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "тренере")
	assert.NotNil(t, replies[0].Markup)

	replies = b.Dispatch(context.Background(), trainer, BtnSchedule)
	assert.Contains(t, texts(replies), "розкладом")
}

func TestStartParentRegistersAndEndsConversation(t *testing.T) {
	b, _ := newTestBot(t)

	replies := b.HandleStart(context.Background(), parent)
	require.Len(t, replies, 1)
	assert.True(t, replies[0].HTML)
	assert.Contains(t, replies[0].Text, "<code>7</code>")
	assert.Equal(t, 1, b.records.ParentCount())

	replies = b.Dispatch(context.Background(), parent, BtnStudents)
	assert.Contains(t, texts(replies), "лише для тренера")
}

func TestStartParentIsIdempotent(t *testing.T) {
	b, _ := newTestBot(t)

	b.HandleStart(context.Background(), parent)
	b.HandleStart(context.Background(), parent)
	assert.Equal(t, 1, b.records.ParentCount())
}

func TestMenuNavigationThereAndBack(t *testing.T) {
	b, _ := newTestBot(t)
	b.HandleStart(context.Background(), trainer)

	replies := b.Dispatch(context.Background(), trainer, BtnSchedule)
	assert.Contains(t, texts(replies), "розкладом")

	replies = b.Dispatch(context.Background(), trainer, BtnBack)
	assert.Contains(t, texts(replies), "Головне меню")

	replies = b.Dispatch(context.Background(), trainer, BtnStudents)
	assert.Contains(t, texts(replies), "учнями")
}

func TestUnknownLabelRedisplaysCurrentMenu(t *testing.T) {
	b, _ := newTestBot(t)
	b.HandleStart(context.Background(), trainer)

	replies := b.Dispatch(context.Background(), trainer, "щось незрозуміле")
	assert.Contains(t, texts(replies), "Головне меню")

	b.Dispatch(context.Background(), trainer, BtnNews)
	replies = b.Dispatch(context.Background(), trainer, "щось незрозуміле")
	assert.Contains(t, texts(replies), "новинами")
}

func TestIdleTrainerGetsStartHint(t *testing.T) {
	b, _ := newTestBot(t)

	replies := b.Dispatch(context.Background(), trainer, "привіт")
	assert.Contains(t, texts(replies), "/start")
}

func TestNonTrainerTextDeniedWithoutMutation(t *testing.T) {
	b, _ := newTestBot(t)
	b.HandleStart(context.Background(), trainer)

	replies := b.Dispatch(context.Background(), parent, "Іван | Початківець | +380501234567")
	assert.Contains(t, texts(replies), "лише для тренера")
	assert.Empty(t, b.records.Students())
}

func TestAddStudentFlow(t *testing.T) {
	b, _ := newTestBot(t)
	b.HandleStart(context.Background(), trainer)
	b.Dispatch(context.Background(), trainer, BtnStudents)

	replies := b.Dispatch(context.Background(), trainer, BtnAddStudent)
	assert.Contains(t, texts(replies), "форматі")

	// Malformed entry keeps the prompt active.
	replies = b.Dispatch(context.Background(), trainer, "лише ім'я")
	assert.Contains(t, texts(replies), "Невірний формат")
	assert.Empty(t, b.records.Students())

	replies = b.Dispatch(context.Background(), trainer, "Іван Петренко | Початківець | +380501234567")
	assert.Contains(t, texts(replies), "✅ Учня Іван Петренко додано!")

	students := b.records.Students()
	require.Len(t, students, 1)
	assert.Equal(t, "Початківець", students[0].Level)
	assert.Equal(t, "29.08.2026", students[0].Added)
}

func TestAddEntryBackReturnsToMainMenu(t *testing.T) {
	b, _ := newTestBot(t)
	b.HandleStart(context.Background(), trainer)
	b.Dispatch(context.Background(), trainer, BtnNews)
	b.Dispatch(context.Background(), trainer, BtnAddNews)

	replies := b.Dispatch(context.Background(), trainer, BtnBack)
	assert.Contains(t, texts(replies), "Головне меню")
	assert.Empty(t, b.records.News())
}

func TestAddHomeworkBroadcastsToParents(t *testing.T) {
	b, sender := newTestBot(t)
	require.NoError(t, b.records.UpsertParent(1, "Перший"))
	require.NoError(t, b.records.UpsertParent(2, "Другий"))
	require.NoError(t, b.records.UpsertParent(3, "Третій"))
	sender.failing[2] = true

	b.HandleStart(context.Background(), trainer)
	b.Dispatch(context.Background(), trainer, BtnHomework)
	b.Dispatch(context.Background(), trainer, BtnAddHomework)
	replies := b.Dispatch(context.Background(), trainer, "Початківці | Задачі 1-10 | 05.09.2026")

	assert.Contains(t, texts(replies), "Надіслано 2 батькам")
	require.Len(t, sender.got[1], 1)
	assert.Contains(t, sender.got[1][0], "Задачі 1-10")
	assert.Empty(t, sender.got[2])
	require.Len(t, sender.got[3], 1)

	require.Len(t, b.records.HomeworkList(), 1)
}

func TestAddNewsBroadcastsToParents(t *testing.T) {
	b, sender := newTestBot(t)
	require.NoError(t, b.records.UpsertParent(1, "Перший"))

	b.HandleStart(context.Background(), trainer)
	b.Dispatch(context.Background(), trainer, BtnNews)
	b.Dispatch(context.Background(), trainer, BtnAddNews)
	replies := b.Dispatch(context.Background(), trainer, "Турнір у вересні | Запис відкрито")

	assert.Contains(t, texts(replies), "Надіслано 1 батькам")
	require.Len(t, sender.got[1], 1)
	assert.Contains(t, sender.got[1][0], "Турнір у вересні")
}

func TestBroadcastRequiresParents(t *testing.T) {
	b, _ := newTestBot(t)
	b.HandleStart(context.Background(), trainer)
	b.Dispatch(context.Background(), trainer, BtnChat)

	replies := b.Dispatch(context.Background(), trainer, BtnBroadcast)
	assert.Contains(t, texts(replies), "📭")
}

func TestBroadcastMessageFlow(t *testing.T) {
	b, sender := newTestBot(t)
	require.NoError(t, b.records.UpsertParent(1, "Перший"))
	require.NoError(t, b.records.UpsertParent(2, "Другий"))
	sender.failing[2] = true

	b.HandleStart(context.Background(), trainer)
	b.Dispatch(context.Background(), trainer, BtnChat)
	b.Dispatch(context.Background(), trainer, BtnBroadcast)
	replies := b.Dispatch(context.Background(), trainer, "Завтра заняття переноситься")

	assert.Contains(t, texts(replies), "Розіслано 1 батькам")
	assert.Contains(t, texts(replies), "не доставлено 1")
	require.Len(t, sender.got[1], 1)
	assert.Contains(t, sender.got[1][0], "📣 Повідомлення від тренера")
}

func TestChatMenuShowsParentCount(t *testing.T) {
	b, _ := newTestBot(t)
	require.NoError(t, b.records.UpsertParent(1, "Перший"))
	require.NoError(t, b.records.UpsertParent(2, "Другий"))

	b.HandleStart(context.Background(), trainer)
	replies := b.Dispatch(context.Background(), trainer, BtnChat)
	assert.Contains(t, texts(replies), "Зареєстровано батьків: 2")
}

func TestListEmptyCollections(t *testing.T) {
	b, _ := newTestBot(t)
	b.HandleStart(context.Background(), trainer)
	b.Dispatch(context.Background(), trainer, BtnMaterials)

	replies := b.Dispatch(context.Background(), trainer, BtnListMaterials)
	assert.Contains(t, texts(replies), "📭")
}

func TestDeletionMenuCarriesRecordIDs(t *testing.T) {
	b, _ := newTestBot(t)
	b.HandleStart(context.Background(), trainer)
	b.Dispatch(context.Background(), trainer, BtnStudents)
	b.Dispatch(context.Background(), trainer, BtnAddStudent)
	b.Dispatch(context.Background(), trainer, "Іван | Початківець | +38050")
	b.Dispatch(context.Background(), trainer, BtnAddStudent)
	b.Dispatch(context.Background(), trainer, "Марко | Турнірний | +38067")

	replies := b.Dispatch(context.Background(), trainer, BtnDelStudent)
	require.Len(t, replies, 1)
	require.NotNil(t, replies[0].Markup)

	students := b.records.Students()
	rows := replies[0].Markup.InlineKeyboard
	require.Len(t, rows, 2)
	for i, row := range rows {
		require.Len(t, row, 1)
		assert.Contains(t, row[0].Data, strconv.FormatInt(students[i].ID, 10))
	}
}

func TestDeletionMenuEmptyCollection(t *testing.T) {
	b, _ := newTestBot(t)
	b.HandleStart(context.Background(), trainer)
	b.Dispatch(context.Background(), trainer, BtnSchedule)

	replies := b.Dispatch(context.Background(), trainer, BtnDelSchedule)
	require.Len(t, replies, 1)
	assert.Nil(t, replies[0].Markup)
	assert.Contains(t, replies[0].Text, "📭")
}

func TestHomeworkDeletionLabelTruncated(t *testing.T) {
	b, _ := newTestBot(t)
	b.HandleStart(context.Background(), trainer)
	b.Dispatch(context.Background(), trainer, BtnHomework)
	b.Dispatch(context.Background(), trainer, BtnAddHomework)
	long := strings.Repeat("дуже довгий опис ", 5)
	b.Dispatch(context.Background(), trainer, "Група | "+long+" | 01.09.2026")

	replies := b.Dispatch(context.Background(), trainer, BtnDelHomework)
	require.Len(t, replies, 1)
	require.NotNil(t, replies[0].Markup)
	label := replies[0].Markup.InlineKeyboard[0][0].Text
	assert.True(t, strings.HasSuffix(label, "..."))
}

func TestSelectionDeletesByStableID(t *testing.T) {
	b, _ := newTestBot(t)
	b.HandleStart(context.Background(), trainer)
	b.Dispatch(context.Background(), trainer, BtnStudents)
	b.Dispatch(context.Background(), trainer, BtnAddStudent)
	b.Dispatch(context.Background(), trainer, "Іван | Початківець | +38050")
	b.Dispatch(context.Background(), trainer, BtnAddStudent)
	b.Dispatch(context.Background(), trainer, "Марко | Турнірний | +38067")

	students := b.records.Students()
	require.Len(t, students, 2)
	first, second := students[0], students[1]

	// Deleting the first record does not invalidate the second's token.
	out := b.HandleSelection(context.Background(), trainer, domain.KindStudents, first.ID)
	assert.Contains(t, out, "Іван")

	out = b.HandleSelection(context.Background(), trainer, domain.KindStudents, second.ID)
	assert.Contains(t, out, "Марко")
	assert.Empty(t, b.records.Students())
}

func TestSelectionStaleToken(t *testing.T) {
	b, _ := newTestBot(t)
	b.HandleStart(context.Background(), trainer)
	b.Dispatch(context.Background(), trainer, BtnStudents)
	b.Dispatch(context.Background(), trainer, BtnAddStudent)
	b.Dispatch(context.Background(), trainer, "Іван | Початківець | +38050")

	id := b.records.Students()[0].ID
	b.HandleSelection(context.Background(), trainer, domain.KindStudents, id)

	out := b.HandleSelection(context.Background(), trainer, domain.KindStudents, id)
	assert.Equal(t, textStaleRecord, out)
}

func TestSelectionDeniedForNonTrainer(t *testing.T) {
	b, _ := newTestBot(t)
	b.HandleStart(context.Background(), trainer)
	b.Dispatch(context.Background(), trainer, BtnStudents)
	b.Dispatch(context.Background(), trainer, BtnAddStudent)
	b.Dispatch(context.Background(), trainer, "Іван | Початківець | +38050")

	id := b.records.Students()[0].ID
	out := b.HandleSelection(context.Background(), parent, domain.KindStudents, id)
	assert.Equal(t, textAccessDenied, out)
	assert.Len(t, b.records.Students(), 1)
}

func TestScheduleListSorted(t *testing.T) {
	b, _ := newTestBot(t)
	b.HandleStart(context.Background(), trainer)
	b.Dispatch(context.Background(), trainer, BtnSchedule)
	b.Dispatch(context.Background(), trainer, BtnAddSchedule)
	b.Dispatch(context.Background(), trainer, "Сб | 10:00 | Турнірна | Клуб")
	b.Dispatch(context.Background(), trainer, BtnAddSchedule)
	b.Dispatch(context.Background(), trainer, "Пн | 16:00 | Початківці | Школа")

	replies := b.Dispatch(context.Background(), trainer, BtnListSchedule)
	text := texts(replies)
	assert.Less(t, strings.Index(text, "Пн"), strings.Index(text, "Сб"))
}
