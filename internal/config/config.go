package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	Database    Database
	Redis       Redis
	Session     Session
	Admin       Admin
	Order       Order

	Bkash  Bkash  `envPrefix:"BKASH_"`
	MimSMS MimSMS `envPrefix:"MIMSMS_"`
}

type Bkash struct {
	BaseApiURL string `env:"BASE_URL" envDefault:"https://tokenized.pay.bka.sh/v1.2.0-beta/tokenized/checkout"`
	Username   string `env:"USERNAME"`
	Password   string `env:"PASSWORD"`
	AppKey     string `env:"APP_KEY"`
	AppSecret  string `env:"APP_SECRET"`
}

type MimSMS struct {
	BaseApiURL string `env:"BASE_URL" envDefault:"https://api.mimsms.com"`
	Username   string `env:"USERNAME"`
	ApiKey     string `env:"API_KEY"`
	SenderName string `env:"SENDER_NAME" envDefault:"Heriken"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Database struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"mysql"` // mysql, postgres, sqlite
	URL    string `env:"DATABASE_URL"`
}

type Redis struct {
	URL string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
}

type Session struct {
	Secret     string        `env:"SESSION_SECRET"`
	CookieName string        `env:"SESSION_COOKIE" envDefault:"heriken_sid"`
	TTL        time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	Secure     bool          `env:"SESSION_SECURE" envDefault:"false"`
}

type Admin struct {
	// RequireRole gates /api/admin on the session role. Turning it off lets
	// every caller through and exists only for local demos.
	RequireRole bool `env:"ADMIN_REQUIRE_ROLE" envDefault:"true"`
}

type Order struct {
	EnforceTransitions bool `env:"ORDER_ENFORCE_TRANSITIONS" envDefault:"false"`
}

func (c *Config) IsProduction() bool {
	return c.Environment.Name == "production"
}

// Warnings reports missing credentials. None of them stop the server.
func (c *Config) Warnings() []string {
	var warnings []string

	if c.Bkash.Username == "" || c.Bkash.Password == "" || c.Bkash.AppKey == "" || c.Bkash.AppSecret == "" {
		warnings = append(warnings, "bKash credentials not configured")
	}
	if c.MimSMS.Username == "" || c.MimSMS.ApiKey == "" {
		warnings = append(warnings, "MIMSMS credentials not configured")
	}
	if c.Session.Secret == "" {
		warnings = append(warnings, "SESSION_SECRET not set, using an insecure default")
	}
	if c.Database.URL == "" {
		warnings = append(warnings, "DATABASE_URL not set")
	}
	if !c.Admin.RequireRole {
		warnings = append(warnings, "ADMIN_REQUIRE_ROLE=false: admin endpoints are open to every caller")
	}

	return warnings
}
