// Package domain defines the trainer's dataset: the five record
// collections, the parent registry, and the structured-input parsing
// used to create records from chat messages.
package domain

import (
	"sort"
	"time"
)

// DateStamp is the display format used for creation dates.
const DateStamp = "02.01.2006"

// Student is a pupil record managed by the trainer.
type Student struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level"`
	Phone string `json:"phone"`
	Added string `json:"added"`
}

// ScheduleEntry is a single lesson slot. Duplicates are allowed.
type ScheduleEntry struct {
	ID    int64  `json:"id"`
	Day   string `json:"day"`
	Time  string `json:"time"`
	Group string `json:"group"`
	Place string `json:"place"`
}

// Homework is an assignment; its creation triggers a broadcast to parents.
type Homework struct {
	ID       int64  `json:"id"`
	Group    string `json:"group"`
	Task     string `json:"task"`
	Deadline string `json:"deadline"`
	Created  string `json:"created"`
}

// NewsItem is an announcement; its creation triggers a broadcast to parents.
type NewsItem struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Date  string `json:"date"`
}

// Material is a study resource link. The link is an opaque string.
type Material struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Category string `json:"category"`
	Added    string `json:"added"`
}

// Dataset is the root aggregate persisted as one document.
// Record ids are dataset-scoped and monotonic; NextID holds the next
// unassigned value.
type Dataset struct {
	Students  []Student         `json:"students"`
	Schedule  []ScheduleEntry   `json:"schedule"`
	Homework  []Homework        `json:"homework"`
	News      []NewsItem        `json:"news"`
	Materials []Material        `json:"materials"`
	Parents   map[string]string `json:"parents"`
	NextID    int64             `json:"next_id"`
}

// NewDataset returns an empty dataset ready for use.
func NewDataset() *Dataset {
	return &Dataset{
		Students:  []Student{},
		Schedule:  []ScheduleEntry{},
		Homework:  []Homework{},
		News:      []NewsItem{},
		Materials: []Material{},
		Parents:   map[string]string{},
		NextID:    1,
	}
}

// Stamp formats t in the dataset's display date format.
func Stamp(t time.Time) string {
	return t.Format(DateStamp)
}

// dayOrder ranks the short Ukrainian day codes for schedule display.
// Unknown day labels sort after every known one, keeping entry order.
var dayOrder = map[string]int{
	"Пн": 0, "Вт": 1, "Ср": 2, "Чт": 3, "Пт": 4, "Сб": 5, "Нд": 6,
}

const unknownDayRank = 9

// DayRank returns the display rank of a day label.
func DayRank(day string) int {
	if r, ok := dayOrder[day]; ok {
		return r
	}
	return unknownDayRank
}

// SortedSchedule returns the schedule ordered by day code, preserving
// the relative order of entries within the same day.
func SortedSchedule(entries []ScheduleEntry) []ScheduleEntry {
	out := make([]ScheduleEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return DayRank(out[i].Day) < DayRank(out[j].Day)
	})
	return out
}
