package lesson

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

func Create(ctx context.Context, db sqlx.ExtContext, l Lesson) error {
	const q = `
	INSERT INTO lessons
		(lesson_id, course_id, index, name, video_url, free, created_at, updated_at)
	VALUES
		(:lesson_id, :course_id, :index, :name, :video_url, :free, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, l); err != nil {
		return fmt.Errorf("inserting lesson: %w", err)
	}
	return nil
}

// FetchByCourse returns the course's lessons in play order. The result is
// the authoritative denominator for progress percentages.
func FetchByCourse(ctx context.Context, db sqlx.ExtContext, courseID string) ([]Lesson, error) {
	const q = `SELECT * FROM lessons WHERE course_id = $1 ORDER BY index`

	ls := []Lesson{}
	if err := sqlx.SelectContext(ctx, db, &ls, q, courseID); err != nil {
		return nil, fmt.Errorf("selecting lessons of course[%s]: %w", courseID, err)
	}
	return ls, nil
}
