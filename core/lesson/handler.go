package lesson

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/learnhub/backend/api/web"
	"github.com/learnhub/backend/api/weberr"
	"github.com/learnhub/backend/core/course"
	"github.com/learnhub/backend/validate"
)

func HandleListByCourse(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "course_id")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		if _, err := course.Fetch(ctx, db, courseID); err != nil {
			if errors.Is(err, course.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		ls, err := FetchByCourse(ctx, db, courseID)
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, ls, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		courseID := web.Param(r, "course_id")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		var ln LessonNew
		if err := web.Decode(w, r, &ln); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(ln); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		if _, err := course.Fetch(ctx, db, courseID); err != nil {
			if errors.Is(err, course.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		now := time.Now().UTC()
		l := Lesson{
			ID:        validate.GenerateID(),
			CourseID:  courseID,
			Index:     ln.Index,
			Name:      ln.Name,
			VideoURL:  ln.VideoURL,
			Free:      ln.Free,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := Create(ctx, db, l); err != nil {
			return err
		}
		return web.Respond(ctx, w, l, http.StatusCreated)
	}
}
