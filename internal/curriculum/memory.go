package curriculum

import (
	"context"
	"slices"
	"sync"

	"github.com/abhisek/lingo/internal/apperr"
)

// MemoryStore serves courses held in memory. It backs tests and the
// read-only mode where a curriculum file is used without importing it.
type MemoryStore struct {
	mu      sync.RWMutex
	courses map[int64]*Course
}

// NewMemoryStore returns a store holding the given courses.
func NewMemoryStore(courses ...*Course) *MemoryStore {
	m := &MemoryStore{courses: make(map[int64]*Course)}
	for _, c := range courses {
		m.put(c)
	}
	return m
}

func (m *MemoryStore) put(c *Course) {
	cp := cloneCourse(c)
	cp.link()
	cp.Sort()
	m.courses[cp.ID] = cp
}

// ImportCourse replaces the course with the same id.
func (m *MemoryStore) ImportCourse(_ context.Context, c *Course) error {
	if err := Validate(c); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(c)
	return nil
}

func (m *MemoryStore) ListCourses(_ context.Context) ([]Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, Course{ID: c.ID, Title: c.Title, ImageSrc: c.ImageSrc})
	}
	slices.SortFunc(out, func(a, b Course) int { return int(a.ID - b.ID) })
	return out, nil
}

func (m *MemoryStore) GetCourse(_ context.Context, id int64) (*Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, apperr.ErrCourseNotFound
	}
	return cloneCourse(c), nil
}

func (m *MemoryStore) GetChallenge(_ context.Context, id int64) (*Challenge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.courses {
		for _, u := range c.Units {
			for _, l := range u.Lessons {
				for _, ch := range l.Challenges {
					if ch.ID == id {
						ch.Options = slices.Clone(ch.Options)
						return &ch, nil
					}
				}
			}
		}
	}
	return nil, apperr.ErrChallengeNotFound
}

func (m *MemoryStore) GetLessonWithChallenges(_ context.Context, id int64) (*Lesson, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.courses {
		if _, l := c.Lesson(id); l != nil {
			cp := cloneLesson(*l)
			return &cp, nil
		}
	}
	return nil, apperr.ErrLessonNotFound
}

func cloneCourse(c *Course) *Course {
	cp := *c
	cp.Units = make([]Unit, len(c.Units))
	for i, u := range c.Units {
		lessons := make([]Lesson, len(u.Lessons))
		for j, l := range u.Lessons {
			lessons[j] = cloneLesson(l)
		}
		u.Lessons = lessons
		cp.Units[i] = u
	}
	return &cp
}

func cloneLesson(l Lesson) Lesson {
	chs := make([]Challenge, len(l.Challenges))
	for i, ch := range l.Challenges {
		ch.Options = slices.Clone(ch.Options)
		chs[i] = ch
	}
	l.Challenges = chs
	return l
}
