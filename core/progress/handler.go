package progress

import (
	"context"
	"errors"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/learnhub/backend/api/web"
	"github.com/learnhub/backend/api/weberr"
	"github.com/learnhub/backend/core/claims"
	"github.com/learnhub/backend/core/course"
	"github.com/learnhub/backend/validate"
)

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		courseID := web.Param(r, "course_id")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}

		rec, err := Fetch(ctx, db, clm.UserID, courseID)
		if err != nil {
			if errors.Is(err, course.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}
		return web.Respond(ctx, w, rec, http.StatusOK)
	}
}

func HandleMarkComplete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		courseID := web.Param(r, "course_id")
		lessonID := web.Param(r, "lesson_id")
		if err := validate.CheckID(courseID); err != nil {
			return weberr.BadRequest(err)
		}
		if err := validate.CheckID(lessonID); err != nil {
			return weberr.BadRequest(err)
		}

		rec, err := MarkComplete(ctx, db, clm.UserID, courseID, lessonID)
		if err != nil {
			switch {
			case errors.Is(err, ErrNotEnrolled):
				return weberr.Forbidden(err)
			case errors.Is(err, course.ErrNotFound), errors.Is(err, ErrLessonNotFound):
				return weberr.NotFound(err)
			}
			return err
		}
		return web.Respond(ctx, w, rec, http.StatusOK)
	}
}
