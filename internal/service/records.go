// Package service owns the mutable dataset.  All mutations funnel
// through one mutex (single writer) and each mutating call persists the
// full dataset before returning.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"chess-trainer-bot/internal/domain"
	"chess-trainer-bot/internal/logger"
	"chess-trainer-bot/internal/store"
)

var (
	// ErrIndexOutOfRange reports a positional removal outside the
	// collection's current bounds. The collection is left unmodified.
	ErrIndexOutOfRange = errors.New("records: index out of range")
	// ErrStaleSelection reports a deletion token whose record id is no
	// longer present, e.g. after a concurrent deletion.
	ErrStaleSelection = errors.New("records: selection no longer exists")
)

// Records manages the five collections and the parent registry.
type Records struct {
	mu    sync.Mutex
	store store.Store
	data  *domain.Dataset
}

// Open loads the dataset from the store. Records persisted before stable
// ids were introduced get ids backfilled on load.
func Open(st store.Store) (*Records, error) {
	ds, err := st.Load()
	if err != nil {
		return nil, err
	}
	r := &Records{store: st, data: ds}
	if r.backfillIDs() {
		if err := st.Save(ds); err != nil {
			return nil, fmt.Errorf("persist id backfill: %w", err)
		}
	}
	return r, nil
}

// backfillIDs assigns ids to legacy records and reports whether anything changed.
func (r *Records) backfillIDs() bool {
	ds := r.data
	if ds.NextID < 1 {
		ds.NextID = 1
	}
	changed := false
	assign := func(id *int64) {
		if *id == 0 {
			*id = ds.NextID
			ds.NextID++
			changed = true
		} else if *id >= ds.NextID {
			ds.NextID = *id + 1
		}
	}
	for i := range ds.Students {
		assign(&ds.Students[i].ID)
	}
	for i := range ds.Schedule {
		assign(&ds.Schedule[i].ID)
	}
	for i := range ds.Homework {
		assign(&ds.Homework[i].ID)
	}
	for i := range ds.News {
		assign(&ds.News[i].ID)
	}
	for i := range ds.Materials {
		assign(&ds.Materials[i].ID)
	}
	return changed
}

func (r *Records) nextID() int64 {
	id := r.data.NextID
	r.data.NextID++
	return id
}

// save persists the dataset; on failure the caller must roll back its
// in-memory change so memory never runs ahead of disk.
func (r *Records) save(op string) error {
	if err := r.store.Save(r.data); err != nil {
		logger.Store.Error("dataset save failed",
			slog.String("event", "store.save"),
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return err
	}
	return nil
}

// AddStudent parses "name | level | phone" input and appends the student.
func (r *Records) AddStudent(text string, now time.Time) (domain.Student, error) {
	s, err := domain.ParseStudent(text, now)
	if err != nil {
		return domain.Student{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.nextID()
	r.data.Students = append(r.data.Students, s)
	if err := r.save("add_student"); err != nil {
		r.data.Students = r.data.Students[:len(r.data.Students)-1]
		r.data.NextID--
		return domain.Student{}, err
	}
	return s, nil
}

// AddScheduleEntry parses "day | time | group | place" input and appends the entry.
func (r *Records) AddScheduleEntry(text string) (domain.ScheduleEntry, error) {
	e, err := domain.ParseScheduleEntry(text)
	if err != nil {
		return domain.ScheduleEntry{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID()
	r.data.Schedule = append(r.data.Schedule, e)
	if err := r.save("add_schedule"); err != nil {
		r.data.Schedule = r.data.Schedule[:len(r.data.Schedule)-1]
		r.data.NextID--
		return domain.ScheduleEntry{}, err
	}
	return e, nil
}

// AddHomework parses "group | task | deadline" input and appends the assignment.
func (r *Records) AddHomework(text string, now time.Time) (domain.Homework, error) {
	h, err := domain.ParseHomework(text, now)
	if err != nil {
		return domain.Homework{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	h.ID = r.nextID()
	r.data.Homework = append(r.data.Homework, h)
	if err := r.save("add_homework"); err != nil {
		r.data.Homework = r.data.Homework[:len(r.data.Homework)-1]
		r.data.NextID--
		return domain.Homework{}, err
	}
	return h, nil
}

// AddNewsItem parses "title | text" input and appends the announcement.
func (r *Records) AddNewsItem(text string, now time.Time) (domain.NewsItem, error) {
	n, err := domain.ParseNewsItem(text, now)
	if err != nil {
		return domain.NewsItem{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = r.nextID()
	r.data.News = append(r.data.News, n)
	if err := r.save("add_news"); err != nil {
		r.data.News = r.data.News[:len(r.data.News)-1]
		r.data.NextID--
		return domain.NewsItem{}, err
	}
	return n, nil
}

// AddMaterial parses "title | link | category" input and appends the material.
func (r *Records) AddMaterial(text string, now time.Time) (domain.Material, error) {
	m, err := domain.ParseMaterial(text, now)
	if err != nil {
		return domain.Material{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.nextID()
	r.data.Materials = append(r.data.Materials, m)
	if err := r.save("add_material"); err != nil {
		r.data.Materials = r.data.Materials[:len(r.data.Materials)-1]
		r.data.NextID--
		return domain.Material{}, err
	}
	return m, nil
}

// Students returns the students in insertion order.
func (r *Records) Students() []domain.Student {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Student, len(r.data.Students))
	copy(out, r.data.Students)
	return out
}

// Schedule returns the schedule entries in insertion order.
func (r *Records) Schedule() []domain.ScheduleEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ScheduleEntry, len(r.data.Schedule))
	copy(out, r.data.Schedule)
	return out
}

// HomeworkList returns the assignments in insertion order.
func (r *Records) HomeworkList() []domain.Homework {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Homework, len(r.data.Homework))
	copy(out, r.data.Homework)
	return out
}

// News returns the announcements in insertion order.
func (r *Records) News() []domain.NewsItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.NewsItem, len(r.data.News))
	copy(out, r.data.News)
	return out
}

// Materials returns the materials in insertion order.
func (r *Records) Materials() []domain.Material {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Material, len(r.data.Materials))
	copy(out, r.data.Materials)
	return out
}

func cut[T any](s []T, i int) ([]T, T, error) {
	var zero T
	if i < 0 || i >= len(s) {
		return s, zero, ErrIndexOutOfRange
	}
	removed := s[i]
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	out = append(out, s[i+1:]...)
	return out, removed, nil
}

func indexByID[T any](s []T, id int64, idOf func(T) int64) int {
	for i, v := range s {
		if idOf(v) == id {
			return i
		}
	}
	return -1
}

// RemoveAt removes the record at the positional index of the kind's
// collection. Indices of subsequent records shift down by one, so callers
// must not cache indices across mutations.
func (r *Records) RemoveAt(kind domain.Kind, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeAtLocked(kind, index)
}

func (r *Records) removeAtLocked(kind domain.Kind, index int) error {
	ds := r.data
	switch kind {
	case domain.KindStudents:
		next, _, err := cut(ds.Students, index)
		if err != nil {
			return err
		}
		prev := ds.Students
		ds.Students = next
		if err := r.save("remove_" + string(kind)); err != nil {
			ds.Students = prev
			return err
		}
	case domain.KindSchedule:
		next, _, err := cut(ds.Schedule, index)
		if err != nil {
			return err
		}
		prev := ds.Schedule
		ds.Schedule = next
		if err := r.save("remove_" + string(kind)); err != nil {
			ds.Schedule = prev
			return err
		}
	case domain.KindHomework:
		next, _, err := cut(ds.Homework, index)
		if err != nil {
			return err
		}
		prev := ds.Homework
		ds.Homework = next
		if err := r.save("remove_" + string(kind)); err != nil {
			ds.Homework = prev
			return err
		}
	case domain.KindNews:
		next, _, err := cut(ds.News, index)
		if err != nil {
			return err
		}
		prev := ds.News
		ds.News = next
		if err := r.save("remove_" + string(kind)); err != nil {
			ds.News = prev
			return err
		}
	case domain.KindMaterials:
		next, _, err := cut(ds.Materials, index)
		if err != nil {
			return err
		}
		prev := ds.Materials
		ds.Materials = next
		if err := r.save("remove_" + string(kind)); err != nil {
			ds.Materials = prev
			return err
		}
	default:
		return ErrStaleSelection
	}
	return nil
}

// RemoveByID removes the record with the given stable id from the kind's
// collection. Stable ids keep deletion tokens valid across unrelated
// mutations; an id that is no longer present yields ErrStaleSelection
// and no mutation.
func (r *Records) RemoveByID(kind domain.Kind, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var index int
	switch kind {
	case domain.KindStudents:
		index = indexByID(r.data.Students, id, func(s domain.Student) int64 { return s.ID })
	case domain.KindSchedule:
		index = indexByID(r.data.Schedule, id, func(e domain.ScheduleEntry) int64 { return e.ID })
	case domain.KindHomework:
		index = indexByID(r.data.Homework, id, func(h domain.Homework) int64 { return h.ID })
	case domain.KindNews:
		index = indexByID(r.data.News, id, func(n domain.NewsItem) int64 { return n.ID })
	case domain.KindMaterials:
		index = indexByID(r.data.Materials, id, func(m domain.Material) int64 { return m.ID })
	default:
		return ErrStaleSelection
	}
	if index < 0 {
		return ErrStaleSelection
	}
	return r.removeAtLocked(kind, index)
}

// UpsertParent registers or renames a parent. The operation is idempotent.
func (r *Records) UpsertParent(id int64, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strconv.FormatInt(id, 10)
	prev, existed := r.data.Parents[key]
	r.data.Parents[key] = name
	if err := r.save("upsert_parent"); err != nil {
		if existed {
			r.data.Parents[key] = prev
		} else {
			delete(r.data.Parents, key)
		}
		return err
	}
	return nil
}

// Parents returns a copy of the parent registry.
func (r *Records) Parents() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.data.Parents))
	for k, v := range r.data.Parents {
		out[k] = v
	}
	return out
}

// ParentIDs returns the registered parent chat ids in ascending order.
func (r *Records) ParentIDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.data.Parents))
	for k := range r.data.Parents {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			logger.SVC.Warn("skipping non-numeric parent id",
				slog.String("event", "parents.list"),
				slog.String("key", logger.SanitizeLimit(k, 32)),
			)
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ParentCount reports the number of registered parents.
func (r *Records) ParentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data.Parents)
}
