package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"chess-trainer-bot/internal/domain"
)

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "chess_bot_data.json"))
}

func TestLoadMissingFileReturnsEmptyDataset(t *testing.T) {
	s := tempStore(t)

	ds, err := s.Load()
	require.NoError(t, err)
	require.Empty(t, ds.Students)
	require.Empty(t, ds.Schedule)
	require.Empty(t, ds.Homework)
	require.Empty(t, ds.News)
	require.Empty(t, ds.Materials)
	require.Empty(t, ds.Parents)
	require.EqualValues(t, 1, ds.NextID)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	s := tempStore(t)

	ds := domain.NewDataset()
	ds.Students = append(ds.Students, domain.Student{
		ID: 1, Name: "Олег Іванов", Level: "початківець", Phone: "+380991111111", Added: "01.03.2025",
	})
	ds.Parents["100"] = "Ірина Петрова"
	ds.NextID = 2

	require.NoError(t, s.Save(ds))

	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, ds.Students, got.Students)
	require.Equal(t, ds.Parents, got.Parents)
	require.EqualValues(t, 2, got.NextID)
}

func TestSaveWritesReadableUTF8(t *testing.T) {
	s := tempStore(t)

	ds := domain.NewDataset()
	ds.News = append(ds.News, domain.NewsItem{ID: 1, Title: "Турнір у квітні", Text: "Запрошуємо!", Date: "01.03.2025"})
	require.NoError(t, s.Save(ds))

	raw, err := os.ReadFile(s.path)
	require.NoError(t, err)
	// non-ASCII stays unescaped in the document
	require.True(t, strings.Contains(string(raw), "Турнір у квітні"), "got: %s", raw)
}

func TestLoadCorruptFileFailsClosed(t *testing.T) {
	s := tempStore(t)
	require.NoError(t, os.WriteFile(s.path, []byte("{not json"), 0o644))

	_, err := s.Load()
	require.ErrorIs(t, err, ErrCorrupt)

	// the broken document is left untouched
	raw, readErr := os.ReadFile(s.path)
	require.NoError(t, readErr)
	require.Equal(t, "{not json", string(raw))
}

func TestSaveOverwritesAtomically(t *testing.T) {
	s := tempStore(t)

	first := domain.NewDataset()
	first.Materials = append(first.Materials, domain.Material{ID: 1, Title: "Збірник", Link: "https://example.com", Category: "Задачники"})
	require.NoError(t, s.Save(first))

	second := domain.NewDataset()
	require.NoError(t, s.Save(second))

	got, err := s.Load()
	require.NoError(t, err)
	require.Empty(t, got.Materials)

	// no temp leftovers next to the document
	entries, err := os.ReadDir(filepath.Dir(s.path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
