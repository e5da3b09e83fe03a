package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestParseStudent(t *testing.T) {
	s, err := ParseStudent("Олег Іванов | початківець | +380991234567", testNow)
	require.NoError(t, err)
	require.Equal(t, "Олег Іванов", s.Name)
	require.Equal(t, "початківець", s.Level)
	require.Equal(t, "+380991234567", s.Phone)
	require.Equal(t, "01.03.2025", s.Added)
}

func TestParseStudentMalformed(t *testing.T) {
	tests := []string{
		"",
		"Олег Іванов",
		"Олег Іванов | початківець",
		"Олег Іванов | | +380991234567",
	}
	for _, in := range tests {
		_, err := ParseStudent(in, testNow)
		require.ErrorIs(t, err, ErrMalformedInput, "input %q", in)
	}
}

func TestParseScheduleEntry(t *testing.T) {
	e, err := ParseScheduleEntry("Пн | 17:00 | Початківці | Зал №1")
	require.NoError(t, err)
	require.Equal(t, ScheduleEntry{Day: "Пн", Time: "17:00", Group: "Початківці", Place: "Зал №1"}, e)

	_, err = ParseScheduleEntry("Пн | 17:00 | Початківці")
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestParseExtraFieldsIgnored(t *testing.T) {
	h, err := ParseHomework("Початківці | Вивчити e4 e5 | 15.03.2025 | зайве", testNow)
	require.NoError(t, err)
	require.Equal(t, "Початківці", h.Group)
	require.Equal(t, "Вивчити e4 e5", h.Task)
	require.Equal(t, "15.03.2025", h.Deadline)
	require.Equal(t, "01.03.2025", h.Created)

	n, err := ParseNewsItem("Турнір | Запрошуємо всіх | додатково", testNow)
	require.NoError(t, err)
	require.Equal(t, "Турнір", n.Title)
	require.Equal(t, "Запрошуємо всіх", n.Text)
}

func TestParseMaterial(t *testing.T) {
	m, err := ParseMaterial("Збірник задач | https://example.com | Задачники", testNow)
	require.NoError(t, err)
	require.Equal(t, "https://example.com", m.Link)
	require.Equal(t, "Задачники", m.Category)

	_, err = ParseMaterial("лише назва", testNow)
	require.True(t, errors.Is(err, ErrMalformedInput))
}

func TestSortedSchedule(t *testing.T) {
	entries := []ScheduleEntry{
		{Day: "Сб", Time: "10:00"},
		{Day: "Пн", Time: "17:00"},
		{Day: "???", Time: "09:00"},
		{Day: "Пн", Time: "19:00"},
	}
	sorted := SortedSchedule(entries)
	require.Equal(t, "Пн", sorted[0].Day)
	require.Equal(t, "17:00", sorted[0].Time)
	require.Equal(t, "19:00", sorted[1].Time)
	require.Equal(t, "Сб", sorted[2].Day)
	// unknown day codes sort last
	require.Equal(t, "???", sorted[3].Day)
	// input order untouched
	require.Equal(t, "Сб", entries[0].Day)
}

func TestKindFromTag(t *testing.T) {
	for _, tag := range []string{"students", "schedule", "homework", "news", "materials"} {
		k, ok := KindFromTag(tag)
		require.True(t, ok)
		require.Equal(t, Kind(tag), k)
	}
	_, ok := KindFromTag("unknown")
	require.False(t, ok)
}
