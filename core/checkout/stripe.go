package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/learnhub/backend/api/web"
	"github.com/learnhub/backend/api/weberr"
	"github.com/learnhub/backend/config"
	"github.com/learnhub/backend/core/claims"
	"github.com/learnhub/backend/core/course"
	"github.com/learnhub/backend/core/enrollment"
	"github.com/learnhub/backend/validate"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
)

// HandleCreateSession opens a stripe checkout session for a single course
// and returns the provider-hosted URL. No order row is written: the session
// metadata is the only link between the payment and the pair it pays for.
func HandleCreateSession(db *sqlx.DB, strp *stripecl.API, cfg config.Stripe) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var cn CheckoutNew
		if err := web.Decode(w, r, &cn); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(cn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		c, err := course.Fetch(ctx, db, cn.CourseID)
		if err != nil {
			if errors.Is(err, course.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		enrolled, err := enrollment.IsEnrolled(ctx, db, clm.UserID, c.ID)
		if err != nil {
			return err
		}
		if enrolled {
			err := errors.New("already enrolled in this course")
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		params := &stripe.CheckoutSessionParams{
			SuccessURL: stripe.String(cfg.SuccessURL + "?sessionId={CHECKOUT_SESSION_ID}"),
			CancelURL:  stripe.String(cfg.CancelURL),
			Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),

			LineItems: []*stripe.CheckoutSessionLineItemParams{{
				Quantity: stripe.Int64(1),

				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("usd"),
					UnitAmount: stripe.Int64(c.MinorUnits()),

					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(c.Name),
						Description: stripe.String(c.Description),
					},
				},
			}},
		}

		// Echoed back verbatim on every confirmation signal.
		params.AddMetadata(metadataUserID, clm.UserID)
		params.AddMetadata(metadataCourseID, c.ID)

		s, err := strp.CheckoutSessions.New(params)
		if err != nil {
			return weberr.Unavailable(fmt.Errorf("creating stripe session: %w", err))
		}

		return web.Respond(ctx, w, CheckoutRedirect{RedirectURL: s.URL}, http.StatusOK)
	}
}

// HandleVerify is the client-side confirmation trigger. The redirect back
// from checkout proves nothing by itself, so the session status is re-asked
// from the provider and only a provider-confirmed paid session reaches
// Reconcile.
func HandleVerify(db *sqlx.DB, strp *stripecl.API) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if _, err := claims.Get(ctx); err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		sessionID := r.URL.Query().Get("sessionId")
		if sessionID == "" {
			return weberr.BadRequest(errors.New("missing sessionId parameter"))
		}

		s, err := strp.CheckoutSessions.Get(sessionID, nil)
		if err != nil {
			var serr *stripe.Error
			if errors.As(err, &serr) && serr.HTTPStatusCode == http.StatusNotFound {
				return weberr.NotFound(fmt.Errorf("unknown session[%s]: %w", sessionID, err))
			}
			return weberr.Unavailable(fmt.Errorf("retrieving stripe session[%s]: %w", sessionID, err))
		}

		if s.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			return web.Respond(ctx, w, VerifyResult{Enrolled: false}, http.StatusOK)
		}

		userID, courseID, err := sessionMetadata(s.Metadata)
		if err != nil {
			return weberr.BadRequest(err)
		}

		if _, err := enrollment.Reconcile(ctx, db, userID, courseID); err != nil {
			if errors.Is(err, enrollment.ErrUserNotFound) || errors.Is(err, enrollment.ErrCourseNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		return web.Respond(ctx, w, VerifyResult{Enrolled: true}, http.StatusOK)
	}
}

// HandleWebhook is the provider-push confirmation trigger. The body must be
// consumed as raw bytes: the signature covers the exact payload, and nothing
// is parsed for business content before the signature checks out.
//
// The response code is the contract with the provider's retry policy: non-2xx
// means retry later, so permanently broken events (bad signature, bad
// metadata, vanished entities) are logged and acknowledged, while store
// failures surface as errors for a later redelivery.
func HandleWebhook(db *sqlx.DB, cfg config.Stripe, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return weberr.BadRequest(fmt.Errorf("cannot read the request body: %w", err))
		}

		sig := r.Header.Get("Stripe-Signature")
		event, err := webhook.ConstructEvent(b, sig, cfg.WebhookSecret)
		if err != nil {
			log.WithField("message", err).Warn("rejecting unauthenticated stripe event")
			return web.Respond(ctx, w, nil, http.StatusNoContent)
		}

		if event.Type != "checkout.session.completed" {
			return web.Respond(ctx, w, nil, http.StatusNoContent)
		}

		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			log.WithField("message", err).Warn("dropping undecodable stripe event")
			return web.Respond(ctx, w, nil, http.StatusNoContent)
		}

		if session.Mode != stripe.CheckoutSessionModePayment {
			return web.Respond(ctx, w, nil, http.StatusNoContent)
		}

		userID, courseID, err := sessionMetadata(session.Metadata)
		if err != nil {
			log.WithField("session", session.ID).WithField("message", err).Warn("dropping stripe event with bad metadata")
			return web.Respond(ctx, w, nil, http.StatusNoContent)
		}

		if _, err := enrollment.Reconcile(ctx, db, userID, courseID); err != nil {
			if errors.Is(err, enrollment.ErrUserNotFound) || errors.Is(err, enrollment.ErrCourseNotFound) {
				// Redelivery cannot resurrect a deleted entity.
				log.WithField("session", session.ID).WithField("message", err).Warn("dropping stripe event for unknown entities")
				return web.Respond(ctx, w, nil, http.StatusNoContent)
			}
			return fmt.Errorf("the session was paid but its reconciliation failed: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

func sessionMetadata(md map[string]string) (userID string, courseID string, err error) {
	userID, courseID = md[metadataUserID], md[metadataCourseID]
	if userID == "" || courseID == "" {
		return "", "", ErrBadMetadata
	}
	return userID, courseID, nil
}
