package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/learnhub/backend/api/web"
	mock "github.com/stripe/stripe-mock/param"
)

type mockSession struct {
	ID       string
	Metadata map[string]string
	Paid     bool
}

// mockStripe fakes the two provider endpoints the service talks to: session
// creation (echoing metadata back) and session retrieval. Payment is flipped
// explicitly by the test via completePayment.
type mockStripe struct {
	mu       sync.Mutex
	sessions map[string]*mockSession
	next     int
}

func newMockStripe() *mockStripe {
	return &mockStripe{sessions: make(map[string]*mockSession)}
}

func (m *mockStripe) completePayment(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Paid = true
	}
}

func (m *mockStripe) handle() http.Handler {
	create := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params, err := mock.ParseParams(r)
		if err != nil {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		md := map[string]string{}
		if raw, ok := params["metadata"].(map[string]any); ok {
			for k, v := range raw {
				if s, ok := v.(string); ok {
					md[k] = s
				}
			}
		}

		m.mu.Lock()
		m.next++
		id := fmt.Sprintf("cs_test_%d", m.next)
		m.sessions[id] = &mockSession{ID: id, Metadata: md}
		m.mu.Unlock()

		out := map[string]any{
			"id":       id,
			"object":   "checkout.session",
			"url":      "https://checkout.stripe.test/pay/" + id,
			"metadata": md,
		}
		web.Respond(context.Background(), w, out, 200)
	})

	retrieve := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		m.mu.Lock()
		s, ok := m.sessions[id]
		m.mu.Unlock()

		if !ok {
			out := map[string]any{"error": map[string]any{
				"type":    "invalid_request_error",
				"message": "No such checkout.session: " + id,
			}}
			web.Respond(context.Background(), w, out, 404)
			return
		}

		status := "unpaid"
		if s.Paid {
			status = "paid"
		}

		out := map[string]any{
			"id":             s.ID,
			"object":         "checkout.session",
			"payment_status": status,
			"metadata":       s.Metadata,
		}
		web.Respond(context.Background(), w, out, 200)
	})

	r := mux.NewRouter()
	r.Handle("/v1/checkout/sessions", create).Methods("POST")
	r.Handle("/v1/checkout/sessions/{id}", retrieve).Methods("GET")
	return r
}

// mockPaypal fakes order creation and capture, echoing the purchase unit
// reference id back on capture the way the real API does.
type mockPaypal struct {
	mu     sync.Mutex
	orders map[string]string
	next   int
}

func newMockPaypal() *mockPaypal {
	return &mockPaypal{orders: make(map[string]string)}
}

func (m *mockPaypal) handle() http.Handler {
	token := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out := map[string]any{
			"access_token": "test-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		}
		web.Respond(context.Background(), w, out, 200)
	})

	checkout := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Units []struct {
				ReferenceID string `json:"reference_id"`
			} `json:"purchase_units"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Units) != 1 {
			web.Respond(context.Background(), w, nil, 400)
			return
		}

		m.mu.Lock()
		m.next++
		id := fmt.Sprintf("paypal-%d", m.next)
		m.orders[id] = body.Units[0].ReferenceID
		m.mu.Unlock()

		out := map[string]any{"id": id, "status": "CREATED"}
		web.Respond(context.Background(), w, out, 200)
	})

	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		m.mu.Lock()
		ref, ok := m.orders[id]
		m.mu.Unlock()

		if !ok {
			web.Respond(context.Background(), w, nil, 404)
			return
		}

		out := map[string]any{
			"id":     id,
			"status": "COMPLETED",
			"purchase_units": []map[string]any{
				{"reference_id": ref},
			},
		}
		web.Respond(context.Background(), w, out, 200)
	})

	r := mux.NewRouter()
	r.Handle("/v1/oauth2/token", token).Methods("POST")
	r.Handle("/v2/checkout/orders", checkout).Methods("POST")
	r.Handle("/v2/checkout/orders/{id}/capture", capture).Methods("POST")
	return r
}
