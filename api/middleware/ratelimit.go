package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/learnhub/backend/api/web"
	"github.com/learnhub/backend/api/weberr"
	"github.com/learnhub/backend/core/claims"
	"github.com/learnhub/backend/rate"
)

// RateLimit throttles a handler per client. Authenticated callers are keyed
// by user id, anonymous ones by remote address.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			key := r.RemoteAddr
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				key = host
			}
			if clm, err := claims.Get(ctx); err == nil {
				key = clm.UserID
			}

			if !lim.Check(key) {
				err := errors.New("too many requests")
				return weberr.NewError(err, err.Error(), http.StatusTooManyRequests)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
