package config

import "time"

type Config struct {
	Web     Web
	DB      DB
	Cors    Cors
	Auth    Auth
	Stripe  Stripe
	Paypal  Paypal
	Limiter Limiter
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:8000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type DB struct {
	User       string `conf:"default:postgres"`
	Password   string `conf:"default:postgres,mask"`
	Host       string `conf:"default:localhost"`
	Name       string `conf:"default:learnhub"`
	MaxOpen    int    `conf:"default:25"`
	DisableTLS bool   `conf:"default:true"`
}

type Cors struct {
	Origin string
}

type Auth struct {
	SessionLifetime time.Duration `conf:"default:24h"`
}

type Stripe struct {
	APISecret     string        `conf:"mask"`
	WebhookSecret string        `conf:"mask"`
	SuccessURL    string        `conf:"default:http://localhost:3000/courses"`
	CancelURL     string        `conf:"default:http://localhost:3000/courses"`
	Timeout       time.Duration `conf:"default:10s"`
}

type Paypal struct {
	ClientID string `conf:"mask"`
	Secret   string `conf:"mask"`
	URL      string `conf:"default:https://api.sandbox.paypal.com"`
}

type Limiter struct {
	Burst         int           `conf:"default:5"`
	ExpiryMinutes int           `conf:"default:60"`
	Interval      time.Duration `conf:"default:1s"`
}
