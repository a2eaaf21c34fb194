package progress

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"
	"github.com/learnhub/backend/core/course"
	"github.com/learnhub/backend/core/enrollment"
	"github.com/learnhub/backend/core/lesson"
	"github.com/learnhub/backend/database"
)

var (
	ErrNotEnrolled    = errors.New("user is not enrolled in the course")
	ErrLessonNotFound = errors.New("lesson not found in course")
)

// Record is the per-(user, course) completion ledger. The percentage is
// derived on every read from the course's current lesson count, never
// stored, so it cannot drift when the lesson list changes.
type Record struct {
	UserID           string   `json:"userId"`
	CourseID         string   `json:"courseId"`
	CompletedLessons []string `json:"completedLessons"`
	Percentage       int      `json:"percentage"`
}

// Percent computes round(100 * done / total) clamped to [0, 100]. A course
// without lessons reports zero progress.
func Percent(done int, total int) int {
	if total <= 0 {
		return 0
	}

	p := int(math.Round(float64(done) * 100 / float64(total)))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// MarkComplete records a lesson as done for an enrolled user. Completions
// are a monotonic set: marking the same lesson twice is a no-op, and
// concurrent marks of different lessons both survive.
func MarkComplete(ctx context.Context, db *sqlx.DB, userID string, courseID string, lessonID string) (Record, error) {
	enrolled, err := enrollment.IsEnrolled(ctx, db, userID, courseID)
	if err != nil {
		return Record{}, err
	}
	if !enrolled {
		return Record{}, fmt.Errorf("marking lesson[%s] for user[%s]: %w", lessonID, userID, ErrNotEnrolled)
	}

	if _, err := course.Fetch(ctx, db, courseID); err != nil {
		return Record{}, err
	}

	lessons, err := lesson.FetchByCourse(ctx, db, courseID)
	if err != nil {
		return Record{}, err
	}

	found := false
	for _, l := range lessons {
		if l.ID == lessonID {
			found = true
			break
		}
	}
	if !found {
		return Record{}, fmt.Errorf("lesson[%s] does not belong to course[%s]: %w", lessonID, courseID, ErrLessonNotFound)
	}

	// Union and read-back happen in one transaction so the returned
	// record is a consistent snapshot of the write.
	var done []string
	err = database.Transaction(db, func(tx sqlx.ExtContext) error {
		if err := addCompleted(ctx, tx, userID, courseID, lessonID); err != nil {
			return err
		}

		done, err = fetchCompleted(ctx, tx, userID, courseID)
		return err
	})
	if err != nil {
		return Record{}, err
	}

	return Record{
		UserID:           userID,
		CourseID:         courseID,
		CompletedLessons: done,
		Percentage:       Percent(len(done), len(lessons)),
	}, nil
}

// Fetch returns the user's progress for a course. Absence of completions is
// not an error: the zero-value record is the natural initial state.
func Fetch(ctx context.Context, db *sqlx.DB, userID string, courseID string) (Record, error) {
	if _, err := course.Fetch(ctx, db, courseID); err != nil {
		return Record{}, err
	}

	lessons, err := lesson.FetchByCourse(ctx, db, courseID)
	if err != nil {
		return Record{}, err
	}

	done, err := fetchCompleted(ctx, db, userID, courseID)
	if err != nil {
		return Record{}, err
	}

	return Record{
		UserID:           userID,
		CourseID:         courseID,
		CompletedLessons: done,
		Percentage:       Percent(len(done), len(lessons)),
	}, nil
}
