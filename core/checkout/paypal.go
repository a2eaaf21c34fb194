package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/learnhub/backend/api/web"
	"github.com/learnhub/backend/api/weberr"
	"github.com/learnhub/backend/core/claims"
	"github.com/learnhub/backend/core/course"
	"github.com/learnhub/backend/core/enrollment"
	"github.com/learnhub/backend/validate"
	"github.com/plutov/paypal/v4"
)

// HandlePaypalCheckout opens a paypal order for a single course. The course
// id rides along as the purchase unit reference and comes back on capture;
// like the stripe path, nothing is written locally until confirmation.
func HandlePaypalCheckout(db *sqlx.DB, pp *paypal.Client) web.Handler {
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

		price := strconv.FormatFloat(c.Price, 'f', 2, 64)
		units := []paypal.PurchaseUnitRequest{{
			ReferenceID: c.ID,

			Items: []paypal.Item{{
				Quantity:    "1",
				Name:        c.Name,
				Description: c.Description,

				UnitAmount: &paypal.Money{
					Currency: "USD",
					Value:    price,
				},
			}},

			Amount: &paypal.PurchaseUnitAmount{
				Currency: "USD",
				Value:    price,

				Breakdown: &paypal.PurchaseUnitAmountBreakdown{ItemTotal: &paypal.Money{
					Currency: "USD",
					Value:    price,
				}},
			},
		}}

		ord, err := pp.CreateOrder(ctx, "CAPTURE", units, nil, &paypal.ApplicationContext{})
		if err != nil {
			return weberr.Unavailable(fmt.Errorf("creating paypal order: %w", err))
		}

		return web.Respond(ctx, w, ord, http.StatusOK)
	}
}

// HandlePaypalCapture captures a paypal order and feeds the confirmed pair
// into the same Reconcile entry point the stripe triggers use. The caller is
// authenticated, so the user id comes from the session; the course id is the
// reference echoed by the provider.
func HandlePaypalCapture(db *sqlx.DB, pp *paypal.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		providerID := web.Param(r, "id")

		resp, err := pp.CaptureOrder(ctx, providerID, paypal.CaptureOrderRequest{})
		if err != nil {
			return weberr.Unavailable(fmt.Errorf("capturing paypal order[%s]: %w", providerID, err))
		}

		if resp.Status != "COMPLETED" {
			return fmt.Errorf("captured order[%s] with status[%s] different from 'COMPLETED'", providerID, resp.Status)
		}

		if len(resp.PurchaseUnits) != 1 || resp.PurchaseUnits[0].ReferenceID == "" {
			return weberr.BadRequest(fmt.Errorf("order[%s]: %w", providerID, ErrBadMetadata))
		}
		courseID := resp.PurchaseUnits[0].ReferenceID

		if _, err := enrollment.Reconcile(ctx, db, clm.UserID, courseID); err != nil {
			if errors.Is(err, enrollment.ErrUserNotFound) || errors.Is(err, enrollment.ErrCourseNotFound) {
				return weberr.NotFound(err)
			}
			return fmt.Errorf("the order was payed but its reconciliation failed: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
