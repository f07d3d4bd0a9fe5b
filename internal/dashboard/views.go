package dashboard

import "github.com/abhisek/lingo/internal/curriculum"

// LearnView is the learner's course map.
type LearnView struct {
	UserID      string     `json:"user_id"`
	CourseID    int64      `json:"course_id"`
	CourseTitle string     `json:"course_title"`
	Hearts      int        `json:"hearts"`
	Points      int        `json:"points"`
	Percentage  float64    `json:"percentage"`
	Units       []UnitView `json:"units"`

	// Resume is the first uncompleted lesson, nil when the course is done.
	Resume *LessonRef `json:"resume,omitempty"`
}

// UnitView is one unit of the course map.
type UnitView struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Order       int         `json:"order"`
	Lessons     []LessonRef `json:"lessons"`
}

// LessonRef is a lesson on the course map.
type LessonRef struct {
	ID        int64   `json:"id"`
	UnitID    int64   `json:"unit_id"`
	Title     string  `json:"title"`
	Order     int     `json:"order"`
	Completed bool    `json:"completed"`
	Current   bool    `json:"current"`
	Percent   float64 `json:"percent"`
}

// LessonView is the state needed to play a lesson.
type LessonView struct {
	LessonID    int64           `json:"lesson_id"`
	Title       string          `json:"title"`
	Hearts      int             `json:"hearts"`
	Points      int             `json:"points"`
	Percentage  float64         `json:"percentage"`
	Practice    bool            `json:"practice"`
	ResumeIndex int             `json:"resume_index"`
	Challenges  []ChallengeView `json:"challenges"`
}

// ChallengeView is one challenge of a lesson. Options do not reveal which
// one is correct.
type ChallengeView struct {
	ID        int64                    `json:"id"`
	Type      curriculum.ChallengeType `json:"type"`
	Title     string                   `json:"title"`
	Question  string                   `json:"question"`
	Completed bool                     `json:"completed"`
	Options   []OptionView             `json:"options"`
}

// OptionView is an answer choice.
type OptionView struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	ImageSrc string `json:"image_src,omitempty"`
	AudioSrc string `json:"audio_src,omitempty"`
}

// LeaderboardRow is one ranked learner.
type LeaderboardRow struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	ImageSrc string `json:"image_src"`
	Points   int    `json:"points"`
}
