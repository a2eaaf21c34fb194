package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/learnhub/backend/api/web"
	"github.com/learnhub/backend/api/weberr"
	"github.com/learnhub/backend/core/claims"
)

const (
	sessionUserID = "userID"
	sessionRole   = "role"
)

// LoadAndSave adapts the scs cookie middleware to the handler chain.
func LoadAndSave(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error

			sh := session.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err = handler(r.Context(), w, r)
			}))
			sh.ServeHTTP(w, r)

			return err
		}
		return h
	}
	return m
}

// Authenticate rejects callers without a live session and loads their
// identity into the context claims.
func Authenticate(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			userID := session.GetString(ctx, sessionUserID)
			if userID == "" {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			clm := claims.Claims{
				UserID: userID,
				Role:   session.GetString(ctx, sessionRole),
			}

			ctx = claims.Set(ctx, clm)
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// Admin allows only authenticated admins through.
func Admin(session *scs.SessionManager) web.Middleware {
	authen := Authenticate(session)
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if !claims.IsAdmin(ctx) {
				return weberr.Forbidden(errors.New("user is not an admin"))
			}
			return handler(ctx, w, r)
		}
		return authen(h)
	}
	return m
}
