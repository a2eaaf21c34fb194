package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
	"github.com/learnhub/backend/api"
	"github.com/learnhub/backend/config"
	"github.com/learnhub/backend/core/claims"
	"github.com/learnhub/backend/core/user"
	"github.com/learnhub/backend/database"
	"github.com/learnhub/backend/random"
	"github.com/learnhub/backend/rate"
	"github.com/learnhub/backend/validate"
	"github.com/ory/dockertest/v3"
	"github.com/plutov/paypal/v4"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
	"golang.org/x/crypto/bcrypt"
)

const (
	testPass      = "testpass123"
	webhookSecret = "whsec_test_secret"
)

type TestEnv struct {
	DB     *sqlx.DB
	Server *httptest.Server
	URL    string

	AdminID    string
	AdminEmail string
	UserID     string
	UserEmail  string

	UserPass      string
	AdminPass     string
	WebhookSecret string

	Stripe *mockStripe
	Paypal *mockPaypal

	client *http.Client
}

// NewTestEnv spins up a disposable postgres container, migrates it, seeds an
// admin and a regular user, and serves the full API backed by mock payment
// providers.
func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("connecting to docker: %w", err)
	}

	resource, err := pool.Run("postgres", "15-alpine", []string{
		"POSTGRES_USER=postgres",
		"POSTGRES_PASSWORD=postgres",
		"POSTGRES_DB=" + name,
	})
	if err != nil {
		return nil, fmt.Errorf("starting postgres container: %w", err)
	}
	t.Cleanup(func() { pool.Purge(resource) })

	var db *sqlx.DB
	err = pool.Retry(func() error {
		var err error
		db, err = database.Open(config.DB{
			User:       "postgres",
			Password:   "postgres",
			Host:       "localhost:" + resource.GetPort("5432/tcp"),
			Name:       name,
			MaxOpen:    5,
			DisableTLS: true,
		})
		if err != nil {
			return err
		}
		return db.Ping()
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to test database: %w", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating test database: %w", err)
	}

	env := &TestEnv{
		DB:            db,
		UserPass:      testPass,
		AdminPass:     testPass,
		WebhookSecret: webhookSecret,
		Stripe:        newMockStripe(),
		Paypal:        newMockPaypal(),
	}

	env.AdminID, env.AdminEmail, err = seedUser(db, claims.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("seeding admin: %w", err)
	}
	env.UserID, env.UserEmail, err = seedUser(db, claims.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("seeding user: %w", err)
	}

	stripeSrv := httptest.NewServer(env.Stripe.handle())
	t.Cleanup(stripeSrv.Close)

	paypalSrv := httptest.NewServer(env.Paypal.handle())
	t.Cleanup(paypalSrv.Close)

	strp := &stripecl.API{}
	strp.Init("sk_test_env", &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL: stripe.String(stripeSrv.URL),
		}),
	})

	pp, err := paypal.NewClient("test-client", "test-secret", paypalSrv.URL)
	if err != nil {
		return nil, fmt.Errorf("building paypal client: %w", err)
	}

	session := scs.New()
	session.Lifetime = time.Hour

	log := logrus.New()
	log.SetOutput(io.Discard)

	mux := api.APIMux(api.APIConfig{
		Log:     log,
		DB:      db,
		Session: session,
		Paypal:  pp,
		Stripe:  strp,
		StripeCfg: config.Stripe{
			APISecret:     "sk_test_env",
			WebhookSecret: webhookSecret,
			SuccessURL:    "http://localhost:3000/courses",
			CancelURL:     "http://localhost:3000/courses",
			Timeout:       5 * time.Second,
		},
		Limiter: rate.NewLimiter(100, 100, rate.Every(time.Millisecond)),
	})

	env.Server = httptest.NewServer(mux)
	t.Cleanup(env.Server.Close)
	env.URL = env.Server.URL

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("building cookie jar: %w", err)
	}
	env.client = &http.Client{Jar: jar}

	return env, nil
}

func (te *TestEnv) Client() *http.Client { return te.client }

func seedUser(db *sqlx.DB, role string) (id string, email string, err error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(testPass), bcrypt.MinCost)
	if err != nil {
		return "", "", err
	}

	now := time.Now().UTC()
	usr := user.User{
		ID:           validate.GenerateID(),
		Name:         "Test " + role,
		Email:        fmt.Sprintf("%s@test.com", random.String(12)),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := user.Create(context.Background(), db, usr); err != nil {
		return "", "", err
	}
	return usr.ID, usr.Email, nil
}

// Login authenticates the shared client; the session cookie sticks to the
// jar until Logout.
func Login(te *TestEnv, email string, password string) error {
	creds := map[string]string{"email": email, "password": password}
	b, err := json.Marshal(creds)
	if err != nil {
		return err
	}

	w, err := te.Client().Post(te.URL+"/auth/login", "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status %s", w.Status)
	}
	return nil
}

func Logout(te *TestEnv) error {
	w, err := te.Client().Post(te.URL+"/auth/logout", "application/json", nil)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode != http.StatusNoContent {
		return fmt.Errorf("logout failed with status %s", w.Status)
	}
	return nil
}
