package enrollment

import (
	"errors"
	"time"
)

// Outcome reports what a reconciliation attempt did. Exactly one call per
// (user, course) pair ever observes NewlyEnrolled, no matter how many times
// or how concurrently the confirmation signals arrive.
type Outcome string

const (
	NewlyEnrolled   Outcome = "newly_enrolled"
	AlreadyEnrolled Outcome = "already_enrolled"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrCourseNotFound = errors.New("course not found")
)

type Enrollment struct {
	UserID    string    `json:"userId" db:"user_id"`
	CourseID  string    `json:"courseId" db:"course_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
