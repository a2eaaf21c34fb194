package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/learnhub/backend/core/checkout"
	"github.com/learnhub/backend/core/course"
	"github.com/plutov/paypal/v4"
)

// TestPaypalCheckout runs the alternate provider end to end: order creation,
// capture, and the shared reconciliation path behind it.
func TestPaypalCheckout(t *testing.T) {
	env, err := NewTestEnv(t, "paypal_test")
	if err != nil {
		t.Fatalf("initializing test env: %v", err)
	}

	ct := &courseTest{env}
	c := ct.createCourseOK(t)

	if err := Login(env, env.UserEmail, env.UserPass); err != nil {
		t.Fatal(err)
	}
	defer Logout(env)

	b, err := json.Marshal(checkout.CheckoutNew{CourseID: c.ID})
	if err != nil {
		t.Fatal(err)
	}

	w, err := env.Client().Post(env.URL+"/checkout/paypal", "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't create paypal order: status code %s", w.Status)
	}

	var ord paypal.Order
	if err := json.NewDecoder(w.Body).Decode(&ord); err != nil {
		t.Fatalf("cannot unmarshal paypal order: %v", err)
	}

	capture := func() {
		r, err := http.NewRequest(http.MethodPost, env.URL+"/checkout/paypal/"+ord.ID+"/capture", nil)
		if err != nil {
			t.Fatal(err)
		}

		w, err := env.Client().Do(r)
		if err != nil {
			t.Fatal(err)
		}
		defer w.Body.Close()

		if w.StatusCode != http.StatusNoContent {
			t.Fatalf("can't capture paypal order: status code %s", w.Status)
		}
	}

	capture()
	ct.listCoursesOwnedOK(t, []course.Course{c})

	// A duplicate capture replays the idempotent no-op.
	capture()
	ct.listCoursesOwnedOK(t, []course.Course{c})
}
