package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chess-trainer-bot/internal/domain"
)

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

// memStore keeps the dataset in memory and records save calls.
type memStore struct {
	data    *domain.Dataset
	saves   int
	failing bool
}

func (m *memStore) Load() (*domain.Dataset, error) {
	if m.data == nil {
		return domain.NewDataset(), nil
	}
	return m.data, nil
}

func (m *memStore) Save(ds *domain.Dataset) error {
	if m.failing {
		return errors.New("disk full")
	}
	m.saves++
	m.data = ds
	return nil
}

func openRecords(t *testing.T) (*Records, *memStore) {
	t.Helper()
	st := &memStore{}
	r, err := Open(st)
	require.NoError(t, err)
	return r, st
}

func TestAppendThenListPreservesFields(t *testing.T) {
	r, st := openRecords(t)

	s1, err := r.AddStudent("Oleh Ivanov|beginner|+380991111111", testNow)
	require.NoError(t, err)
	s2, err := r.AddStudent(" Ira Petrova | advanced | +380992222222 ", testNow)
	require.NoError(t, err)

	list := r.Students()
	require.Len(t, list, 2)
	require.Equal(t, "Oleh Ivanov", list[0].Name)
	require.Equal(t, "Ira Petrova", list[1].Name)
	require.Equal(t, "advanced", list[1].Level)
	require.Equal(t, "+380992222222", list[1].Phone)
	require.Equal(t, s1.ID+1, s2.ID)
	require.Equal(t, 2, st.saves)
}

func TestRemoveAtShiftsIndices(t *testing.T) {
	r, _ := openRecords(t)
	_, err := r.AddStudent("Oleh Ivanov|beginner|+380991111111", testNow)
	require.NoError(t, err)
	_, err = r.AddStudent("Ira Petrova|advanced|+380992222222", testNow)
	require.NoError(t, err)

	require.NoError(t, r.RemoveAt(domain.KindStudents, 0))

	list := r.Students()
	require.Len(t, list, 1)
	require.Equal(t, "Ira Petrova", list[0].Name)
}

func TestRemoveAtOutOfRange(t *testing.T) {
	r, st := openRecords(t)
	_, err := r.AddScheduleEntry("Пн|17:00|Початківці|Зал №1")
	require.NoError(t, err)
	savesBefore := st.saves

	require.ErrorIs(t, r.RemoveAt(domain.KindSchedule, 1), ErrIndexOutOfRange)
	require.ErrorIs(t, r.RemoveAt(domain.KindSchedule, -1), ErrIndexOutOfRange)
	require.Len(t, r.Schedule(), 1)
	require.Equal(t, savesBefore, st.saves)
}

func TestRemoveByID(t *testing.T) {
	r, _ := openRecords(t)
	n1, err := r.AddNewsItem("Перша|текст", testNow)
	require.NoError(t, err)
	n2, err := r.AddNewsItem("Друга|текст", testNow)
	require.NoError(t, err)

	require.NoError(t, r.RemoveByID(domain.KindNews, n1.ID))

	list := r.News()
	require.Len(t, list, 1)
	require.Equal(t, n2.ID, list[0].ID)

	// the token for the already-removed record is stale now
	require.ErrorIs(t, r.RemoveByID(domain.KindNews, n1.ID), ErrStaleSelection)
	require.Len(t, r.News(), 1)
}

func TestRemoveByIDSurvivesUnrelatedDeletion(t *testing.T) {
	r, _ := openRecords(t)
	m1, err := r.AddMaterial("Перший|https://a|Категорія", testNow)
	require.NoError(t, err)
	m2, err := r.AddMaterial("Другий|https://b|Категорія", testNow)
	require.NoError(t, err)

	// removing m1 shifts positions but m2's token stays valid
	require.NoError(t, r.RemoveByID(domain.KindMaterials, m1.ID))
	require.NoError(t, r.RemoveByID(domain.KindMaterials, m2.ID))
	require.Empty(t, r.Materials())
}

func TestMalformedInputPerformsNoMutation(t *testing.T) {
	r, st := openRecords(t)

	_, err := r.AddStudent("тільки ім'я", testNow)
	require.ErrorIs(t, err, domain.ErrMalformedInput)
	require.Empty(t, r.Students())
	require.Zero(t, st.saves)
}

func TestSaveFailureRollsBackAppend(t *testing.T) {
	r, st := openRecords(t)
	st.failing = true

	_, err := r.AddHomework("Група|Завдання|15.03.2025", testNow)
	require.Error(t, err)
	require.Empty(t, r.HomeworkList())

	st.failing = false
	h, err := r.AddHomework("Група|Завдання|15.03.2025", testNow)
	require.NoError(t, err)
	require.EqualValues(t, 1, h.ID)
}

func TestUpsertParentIdempotent(t *testing.T) {
	r, _ := openRecords(t)

	require.NoError(t, r.UpsertParent(100, "Ірина"))
	require.NoError(t, r.UpsertParent(100, "Ірина Петрова"))

	parents := r.Parents()
	require.Len(t, parents, 1)
	require.Equal(t, "Ірина Петрова", parents["100"])
}

func TestParentIDsSorted(t *testing.T) {
	r, _ := openRecords(t)
	require.NoError(t, r.UpsertParent(300, "C"))
	require.NoError(t, r.UpsertParent(100, "A"))
	require.NoError(t, r.UpsertParent(200, "B"))

	require.Equal(t, []int64{100, 200, 300}, r.ParentIDs())
	require.Equal(t, 3, r.ParentCount())
}

func TestOpenBackfillsLegacyIDs(t *testing.T) {
	ds := domain.NewDataset()
	ds.Students = []domain.Student{
		{Name: "Legacy", Level: "beginner", Phone: "+380"},
	}
	ds.NextID = 0
	st := &memStore{data: ds}

	r, err := Open(st)
	require.NoError(t, err)
	list := r.Students()
	require.EqualValues(t, 1, list[0].ID)
	require.Equal(t, 1, st.saves)
}
