package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// addCompleted unions the lesson into the completed set. ON CONFLICT makes
// the union atomic, so concurrent completions from multiple devices cannot
// lose each other's writes.
func addCompleted(ctx context.Context, db sqlx.ExtContext, userID string, courseID string, lessonID string) error {
	const q = `
	INSERT INTO lessons_progress (user_id, course_id, lesson_id, created_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, course_id, lesson_id) DO NOTHING`

	if _, err := db.ExecContext(ctx, q, userID, courseID, lessonID, time.Now().UTC()); err != nil {
		return fmt.Errorf("inserting completion[%s,%s,%s]: %w", userID, courseID, lessonID, err)
	}
	return nil
}

func fetchCompleted(ctx context.Context, db sqlx.ExtContext, userID string, courseID string) ([]string, error) {
	const q = `
	SELECT lesson_id FROM lessons_progress
	WHERE user_id = $1 AND course_id = $2
	ORDER BY created_at`

	ids := []string{}
	if err := sqlx.SelectContext(ctx, db, &ids, q, userID, courseID); err != nil {
		return nil, fmt.Errorf("selecting completions[%s,%s]: %w", userID, courseID, err)
	}
	return ids, nil
}
