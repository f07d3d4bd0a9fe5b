package notify

import (
	"context"

	"go.uber.org/zap"
)

// Log writes every event to a zap logger at debug level.
type Log struct {
	log *zap.Logger
}

// NewLog returns a Log notifier.
func NewLog(log *zap.Logger) *Log {
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{log: log.Named("notify")}
}

func (l *Log) Notify(_ context.Context, ev Event) error {
	l.log.Debug("progress changed",
		zap.String("user_id", ev.UserID),
		zap.Int64("lesson_id", ev.LessonID),
		zap.Int64("course_id", ev.CourseID),
		zap.String("reason", string(ev.Reason)),
	)
	return nil
}
