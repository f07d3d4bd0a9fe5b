// Package curriculum models the ordered course tree a learner moves through:
// courses contain units, units contain lessons, lessons contain challenges,
// and each challenge offers options of which exactly one is correct.
package curriculum

import (
	"cmp"
	"context"
	"slices"

	"github.com/abhisek/lingo/internal/apperr"
)

// ChallengeType selects how a challenge is presented.
type ChallengeType string

const (
	// Select asks the learner to pick the option matching the question.
	Select ChallengeType = "SELECT"
	// Assist asks the learner to pick the meaning of the question text.
	Assist ChallengeType = "ASSIST"
)

// Valid reports whether t is a known challenge type.
func (t ChallengeType) Valid() bool {
	return t == Select || t == Assist
}

// Title returns the heading shown above a challenge of this type.
func (t ChallengeType) Title(question string) string {
	if t == Assist {
		return "Select the correct meaning"
	}
	return question
}

// Course is the root of a curriculum tree.
type Course struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	ImageSrc string `json:"imageSrc"`
	Units    []Unit `json:"units,omitempty"`
}

// Unit groups lessons within a course.
type Unit struct {
	ID          int64    `json:"id"`
	CourseID    int64    `json:"-"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Order       int      `json:"order"`
	Lessons     []Lesson `json:"lessons,omitempty"`
}

// Lesson groups challenges within a unit.
type Lesson struct {
	ID         int64       `json:"id"`
	UnitID     int64       `json:"-"`
	Title      string      `json:"title"`
	Order      int         `json:"order"`
	Challenges []Challenge `json:"challenges,omitempty"`
}

// Challenge is a single question.
type Challenge struct {
	ID       int64         `json:"id"`
	LessonID int64         `json:"-"`
	Type     ChallengeType `json:"type"`
	Question string        `json:"question"`
	Order    int           `json:"order"`
	Options  []Option      `json:"options,omitempty"`
}

// Option is one answer choice for a challenge.
type Option struct {
	ID          int64  `json:"id"`
	ChallengeID int64  `json:"-"`
	Text        string `json:"text"`
	Correct     bool   `json:"correct"`
	ImageSrc    string `json:"imageSrc,omitempty"`
	AudioSrc    string `json:"audioSrc,omitempty"`
}

// Title returns the presentation heading for the challenge.
func (c *Challenge) Title() string {
	return c.Type.Title(c.Question)
}

// CorrectOption returns the single correct option. A challenge with zero or
// several correct options is a curriculum defect.
func (c *Challenge) CorrectOption() (*Option, error) {
	var found *Option
	count := 0
	for i := range c.Options {
		if c.Options[i].Correct {
			count++
			if found == nil {
				found = &c.Options[i]
			}
		}
	}
	switch count {
	case 0:
		return nil, apperr.Invariant("challenge", c.ID, "no correct option")
	case 1:
		return found, nil
	default:
		return nil, apperr.Invariant("challenge", c.ID, "%d correct options, want exactly one", count)
	}
}

// Option returns the option with the given id, or nil.
func (c *Challenge) Option(id int64) *Option {
	for i := range c.Options {
		if c.Options[i].ID == id {
			return &c.Options[i]
		}
	}
	return nil
}

// Lesson returns the lesson with the given id from anywhere in the course.
func (c *Course) Lesson(id int64) (*Unit, *Lesson) {
	for i := range c.Units {
		u := &c.Units[i]
		for j := range u.Lessons {
			if u.Lessons[j].ID == id {
				return u, &u.Lessons[j]
			}
		}
	}
	return nil, nil
}

// Sort orders every level of the tree by Order, breaking ties by ID.
func (c *Course) Sort() {
	slices.SortStableFunc(c.Units, func(a, b Unit) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), cmp.Compare(a.ID, b.ID))
	})
	for i := range c.Units {
		c.Units[i].sortLessons()
	}
}

func (u *Unit) sortLessons() {
	slices.SortStableFunc(u.Lessons, func(a, b Lesson) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), cmp.Compare(a.ID, b.ID))
	})
	for i := range u.Lessons {
		u.Lessons[i].SortChallenges()
	}
}

// SortChallenges orders the lesson's challenges by Order, breaking ties by ID.
func (l *Lesson) SortChallenges() {
	slices.SortStableFunc(l.Challenges, func(a, b Challenge) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), cmp.Compare(a.ID, b.ID))
	})
}

// Store is the read side of the curriculum. Every method returns a fully
// ordered copy that callers may keep for the duration of a request.
type Store interface {
	// ListCourses returns every course without units.
	ListCourses(ctx context.Context) ([]Course, error)

	// GetCourse returns the full course tree. Missing → apperr.ErrCourseNotFound.
	GetCourse(ctx context.Context, id int64) (*Course, error)

	// GetChallenge returns a challenge with its options.
	// Missing → apperr.ErrChallengeNotFound.
	GetChallenge(ctx context.Context, id int64) (*Challenge, error)

	// GetLessonWithChallenges returns a lesson with its challenges and options.
	// Missing → apperr.ErrLessonNotFound.
	GetLessonWithChallenges(ctx context.Context, id int64) (*Lesson, error)
}

// Importer writes a whole course tree.
type Importer interface {
	ImportCourse(ctx context.Context, c *Course) error
}
