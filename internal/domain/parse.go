package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrMalformedInput reports structured text with fewer delimited fields
// than the record kind requires.
var ErrMalformedInput = errors.New("malformed input")

// FieldDelimiter separates fields in structured record input.
const FieldDelimiter = "|"

// Kind identifies one of the five record collections.
type Kind string

const (
	KindStudents  Kind = "students"
	KindSchedule  Kind = "schedule"
	KindHomework  Kind = "homework"
	KindNews      Kind = "news"
	KindMaterials Kind = "materials"
)

// KindFromTag resolves a collection tag used in callback tokens.
func KindFromTag(tag string) (Kind, bool) {
	switch Kind(tag) {
	case KindStudents, KindSchedule, KindHomework, KindNews, KindMaterials:
		return Kind(tag), true
	}
	return "", false
}

// schema declares the minimum delimited field count per record kind.
// Extra fields are silently ignored.
var schema = map[Kind]int{
	KindStudents:  3,
	KindSchedule:  4,
	KindHomework:  3,
	KindNews:      2,
	KindMaterials: 3,
}

// SplitFields splits structured input for the given kind, trimming
// surrounding whitespace per field. It fails with ErrMalformedInput when
// fewer fields than the kind's schema requires are present, or when any
// required field is empty after trimming.
func SplitFields(kind Kind, text string) ([]string, error) {
	min, ok := schema[kind]
	if !ok {
		return nil, ErrMalformedInput
	}
	raw := strings.Split(text, FieldDelimiter)
	if len(raw) < min {
		return nil, ErrMalformedInput
	}
	fields := make([]string, min)
	for i := 0; i < min; i++ {
		fields[i] = strings.TrimSpace(raw[i])
		if fields[i] == "" {
			return nil, ErrMalformedInput
		}
	}
	return fields, nil
}

// ParseStudent builds a Student from "name | level | phone" input.
func ParseStudent(text string, now time.Time) (Student, error) {
	f, err := SplitFields(KindStudents, text)
	if err != nil {
		return Student{}, err
	}
	return Student{Name: f[0], Level: f[1], Phone: f[2], Added: Stamp(now)}, nil
}

// ParseScheduleEntry builds a ScheduleEntry from "day | time | group | place" input.
func ParseScheduleEntry(text string) (ScheduleEntry, error) {
	f, err := SplitFields(KindSchedule, text)
	if err != nil {
		return ScheduleEntry{}, err
	}
	return ScheduleEntry{Day: f[0], Time: f[1], Group: f[2], Place: f[3]}, nil
}

// ParseHomework builds a Homework from "group | task | deadline" input.
func ParseHomework(text string, now time.Time) (Homework, error) {
	f, err := SplitFields(KindHomework, text)
	if err != nil {
		return Homework{}, err
	}
	return Homework{Group: f[0], Task: f[1], Deadline: f[2], Created: Stamp(now)}, nil
}

// ParseNewsItem builds a NewsItem from "title | text" input.
func ParseNewsItem(text string, now time.Time) (NewsItem, error) {
	f, err := SplitFields(KindNews, text)
	if err != nil {
		return NewsItem{}, err
	}
	return NewsItem{Title: f[0], Text: f[1], Date: Stamp(now)}, nil
}

// ParseMaterial builds a Material from "title | link | category" input.
func ParseMaterial(text string, now time.Time) (Material, error) {
	f, err := SplitFields(KindMaterials, text)
	if err != nil {
		return Material{}, err
	}
	return Material{Title: f[0], Link: f[1], Category: f[2], Added: Stamp(now)}, nil
}
