package enrollment

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Reconcile turns a confirmed payment into a durable enrollment. It is the
// single entry point for every confirmation signal: the provider webhook,
// the client verify-session poll and the paypal capture all land here, so a
// duplicated or racing signal can only ever replay an idempotent no-op.
//
// The ids come straight from provider-echoed metadata, so existence is
// re-checked even though a well-behaved provider can only echo back what we
// gave it.
func Reconcile(ctx context.Context, db *sqlx.DB, userID string, courseID string) (Outcome, error) {
	ok, err := userExists(ctx, db, userID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("reconciling enrollment for user[%s]: %w", userID, ErrUserNotFound)
	}

	ok, err = courseExists(ctx, db, courseID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("reconciling enrollment for course[%s]: %w", courseID, ErrCourseNotFound)
	}

	// The provider-side payment already happened, so a client disconnect
	// must not cancel the enrollment write mid-flight. The mutation runs
	// on its own deadline, detached from the request context.
	mctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	inserted, err := add(mctx, db, userID, courseID)
	if err != nil {
		return "", err
	}

	if !inserted {
		return AlreadyEnrolled, nil
	}
	return NewlyEnrolled, nil
}
