package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/learnhub/backend/api/middleware"
	"github.com/learnhub/backend/api/web"
	"github.com/learnhub/backend/config"
	"github.com/learnhub/backend/core/auth"
	"github.com/learnhub/backend/core/checkout"
	"github.com/learnhub/backend/core/course"
	"github.com/learnhub/backend/core/lesson"
	"github.com/learnhub/backend/core/progress"
	"github.com/learnhub/backend/core/user"
	"github.com/learnhub/backend/rate"
	"github.com/plutov/paypal/v4"
	"github.com/sirupsen/logrus"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

type APIConfig struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	DB         *sqlx.DB
	Session    *scs.SessionManager
	Paypal     *paypal.Client
	Stripe     *stripecl.API
	StripeCfg  config.Stripe
	Limiter    *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)
	admin := auth.Admin(cfg.Session)
	limited := middleware.RateLimit(cfg.Limiter)

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.DB, cfg.Session), limited)
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session), limited)
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))

	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(cfg.DB), authen)

	a.Handle(http.MethodGet, "/courses/owned", course.HandleListOwned(cfg.DB), authen)
	a.Handle(http.MethodGet, "/courses/{course_id}/lessons", lesson.HandleListByCourse(cfg.DB))
	a.Handle(http.MethodPost, "/courses/{course_id}/lessons", lesson.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodGet, "/courses/{id}", course.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/courses", course.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/courses", course.HandleCreate(cfg.DB), admin)

	a.Handle(http.MethodPost, "/checkout/create", checkout.HandleCreateSession(cfg.DB, cfg.Stripe, cfg.StripeCfg), authen, limited)
	a.Handle(http.MethodGet, "/checkout/verify", checkout.HandleVerify(cfg.DB, cfg.Stripe), authen)
	a.Handle(http.MethodPost, "/checkout/webhook", checkout.HandleWebhook(cfg.DB, cfg.StripeCfg, cfg.Log))
	a.Handle(http.MethodPost, "/checkout/paypal", checkout.HandlePaypalCheckout(cfg.DB, cfg.Paypal), authen, limited)
	a.Handle(http.MethodPost, "/checkout/paypal/{id}/capture", checkout.HandlePaypalCapture(cfg.DB, cfg.Paypal), authen)

	a.Handle(http.MethodGet, "/progress/{course_id}", progress.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodPost, "/progress/{course_id}/complete/{lesson_id}", progress.HandleMarkComplete(cfg.DB), authen)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
