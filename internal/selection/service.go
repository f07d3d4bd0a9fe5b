// Package selection sets the course a learner is working through.
package selection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/lingo/internal/apperr"
	"github.com/abhisek/lingo/internal/curriculum"
	"github.com/abhisek/lingo/internal/notify"
	"github.com/abhisek/lingo/internal/progress"
	"github.com/abhisek/lingo/internal/retry"
	"go.uber.org/zap"
)

// Profile is the cosmetic identity refreshed on every selection.
type Profile struct {
	Name     string
	ImageSrc string
}

// Service implements course selection.
type Service struct {
	curriculum curriculum.Store
	repo       progress.Repository
	notifier   notify.Notifier
	log        *zap.Logger
	retry      retry.Config
}

// NewService creates a selection Service.
func NewService(cs curriculum.Store, repo progress.Repository, n notify.Notifier, log *zap.Logger) *Service {
	if n == nil {
		n = notify.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		curriculum: cs,
		repo:       repo,
		notifier:   n,
		log:        log.Named("selection"),
		retry:      retry.DefaultConfig(),
	}
}

// SelectActiveCourse makes courseID the user's active course. A first
// selection creates the progress record with full hearts; later ones keep
// hearts and points.
func (s *Service) SelectActiveCourse(ctx context.Context, userID string, courseID int64, p Profile) error {
	if userID == "" {
		return apperr.ErrUnauthenticated
	}
	if _, err := s.curriculum.GetCourse(ctx, courseID); err != nil {
		return fmt.Errorf("get course %d: %w", courseID, err)
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = progress.DefaultUserName
	}
	image := strings.TrimSpace(p.ImageSrc)
	if image == "" {
		image = progress.DefaultUserImageSrc
	}

	err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
		return s.repo.InTx(ctx, func(ctx context.Context, tx progress.Tx) error {
			up, err := tx.GetUserProgress(ctx, userID)
			switch {
			case errors.Is(err, apperr.ErrProgressNotFound):
				up = progress.New(userID, courseID)
			case err != nil:
				return err
			default:
				up.ActiveCourseID = courseID
			}
			up.UserName = name
			up.UserImageSrc = image
			return tx.UpsertUserProgress(ctx, up)
		})
	}, func(attempt int, err error) {
		s.log.Warn("retrying course selection", zap.String("user_id", userID), zap.Int("retry", attempt), zap.Error(err))
	})
	if err != nil {
		return fmt.Errorf("select course: %w", apperr.FromContext("select course", err))
	}

	s.log.Info("active course selected", zap.String("user_id", userID), zap.Int64("course_id", courseID))

	ev := notify.Event{UserID: userID, CourseID: courseID, Reason: notify.ReasonCourseSelect, Timestamp: time.Now().UTC()}
	if err := s.notifier.Notify(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn("notify failed", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}
