package enrollment

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// add inserts the pair into the enrollment set. The ON CONFLICT clause makes
// the check-then-add a single atomic statement: under concurrent calls for
// the same pair exactly one caller sees inserted == true.
func add(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) (inserted bool, err error) {
	const q = `
	INSERT INTO enrollments (user_id, course_id, created_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id, course_id) DO NOTHING`

	res, err := db.ExecContext(ctx, q, userID, courseID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("inserting enrollment[%s,%s]: %w", userID, courseID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}
	return n == 1, nil
}

func IsEnrolled(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) (bool, error) {
	const q = `SELECT COUNT(*) FROM enrollments WHERE user_id = $1 AND course_id = $2`

	var n int
	if err := sqlx.GetContext(ctx, db, &n, q, userID, courseID); err != nil {
		return false, fmt.Errorf("checking enrollment[%s,%s]: %w", userID, courseID, err)
	}
	return n > 0, nil
}

func ListCourseIDs(ctx context.Context, db sqlx.ExtContext, userID string) ([]string, error) {
	const q = `SELECT course_id FROM enrollments WHERE user_id = $1 ORDER BY created_at`

	ids := []string{}
	if err := sqlx.SelectContext(ctx, db, &ids, q, userID); err != nil {
		return nil, fmt.Errorf("listing enrollments of user[%s]: %w", userID, err)
	}
	return ids, nil
}

func userExists(ctx context.Context, db sqlx.ExtContext, userID string) (bool, error) {
	const q = `SELECT COUNT(*) FROM users WHERE user_id = $1`

	var n int
	if err := sqlx.GetContext(ctx, db, &n, q, userID); err != nil {
		return false, fmt.Errorf("checking user[%s]: %w", userID, err)
	}
	return n > 0, nil
}

func courseExists(ctx context.Context, db sqlx.ExtContext, courseID string) (bool, error) {
	const q = `SELECT COUNT(*) FROM courses WHERE course_id = $1`

	var n int
	if err := sqlx.GetContext(ctx, db, &n, q, courseID); err != nil {
		return false, fmt.Errorf("checking course[%s]: %w", courseID, err)
	}
	return n > 0, nil
}
