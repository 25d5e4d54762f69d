package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName          string
		Env              string // DEV (local; default), TEST, QA, PROD
		Build            string
		Debug            bool
		TestMode         bool
		Timezone         *time.Location
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		RollbarToken     string
		SendgridApiKey   string

		Server    ServerConfig
		Database  DatabaseConfig
		Twilio    TwilioConfig
		Stripe    StripeConfig
		Lifecycle LifecycleConfig
	}

	ServerConfig struct {
		Host            string
		Addr            string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
		CORSOrigins     []string
		RateLimit       float64 // requests per second per client IP; 0 disables
		RateBurst       int
		DisableReqLogs  bool
	}

	DatabaseConfig struct {
		URL           string
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	TwilioConfig struct {
		AccountSID  string
		AuthToken   string
		PhoneNumber string
	}

	StripeConfig struct {
		SecretKey string
		Currency  string
	}

	LifecycleConfig struct {
		Strict bool
	}
)

// Address returns the database "host:port".
func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Enabled reports whether a Postgres database is configured; the in-memory store is used otherwise.
func (c DatabaseConfig) Enabled() bool {
	return c.URL != "" || c.Host != ""
}

func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.PhoneNumber != ""
}

func (c StripeConfig) Enabled() bool {
	return c.SecretKey != ""
}

// NewConfig loads the app configuration from defaults, `config/.env.<env>` and the environment.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "HAID")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", env == "DEV")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("frontendBaseURL", "http://localhost:5000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.corsOrigins", "http://localhost:3000,http://localhost:5000,http://127.0.0.1:5000")
	v.SetDefault("server.rateLimit", 100.0/(15*60)) // 100 requests per 15 minutes
	v.SetDefault("server.rateBurst", 100)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.url", "")
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "haid")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", env == "DEV" || env == "TEST")

	v.SetDefault("twilio.accountSID", "")
	v.SetDefault("twilio.authToken", "")
	v.SetDefault("twilio.phoneNumber", "")

	v.SetDefault("stripe.secretKey", "")
	v.SetDefault("stripe.currency", "inr")

	v.SetDefault("lifecycle.strict", false)

	v.SetEnvPrefix("HAID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// variable names understood by earlier deployments
	bindEnv(v, "frontendBaseURL", "HAID_FRONTENDBASEURL", "FRONTEND_URL")
	bindEnv(v, "database.url", "HAID_DATABASE_URL", "DATABASE_URL")
	bindEnv(v, "stripe.secretKey", "HAID_STRIPE_SECRETKEY", "STRIPE_SECRET_KEY")
	bindEnv(v, "twilio.accountSID", "HAID_TWILIO_ACCOUNTSID", "TWILIO_ACCOUNT_SID")
	bindEnv(v, "twilio.authToken", "HAID_TWILIO_AUTHTOKEN", "TWILIO_AUTH_TOKEN")
	bindEnv(v, "twilio.phoneNumber", "HAID_TWILIO_PHONENUMBER", "TWILIO_PHONE_NUMBER")
	bindEnv(v, "sendgridApiKey", "HAID_SENDGRIDAPIKEY", "SENDGRID_API_KEY")
	bindEnv(v, "rollbarToken", "HAID_ROLLBARTOKEN", "ROLLBAR_TOKEN")

	tz, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		log.Fatalf("config.LoadLocation(%s): %v", v.GetString("timezone"), err)
	}

	addr := v.GetString("server.addr")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("HAID_SERVER_ADDR") == "" {
		addr = ":" + port
	}

	return &Config{
		AppName:          v.GetString("appName"),
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         env == "TEST",
		Timezone:         tz,
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Addr:            addr,
			DebugHost:       v.GetString("server.debugHost"),
			ReadTimeout:     v.GetDuration("server.readTimeout"),
			WriteTimeout:    v.GetDuration("server.writeTimeout"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			CORSOrigins:     splitList(v.GetString("server.corsOrigins")),
			RateLimit:       v.GetFloat64("server.rateLimit"),
			RateBurst:       v.GetInt("server.rateBurst"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			URL:           v.GetString("database.url"),
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Twilio: TwilioConfig{
			AccountSID:  v.GetString("twilio.accountSID"),
			AuthToken:   v.GetString("twilio.authToken"),
			PhoneNumber: v.GetString("twilio.phoneNumber"),
		},
		Stripe: StripeConfig{
			SecretKey: v.GetString("stripe.secretKey"),
			Currency:  v.GetString("stripe.currency"),
		},
		Lifecycle: LifecycleConfig{
			Strict: v.GetBool("lifecycle.strict"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: in-memory storage, no external collaborators.
func NewTestConfig() *Config {
	return &Config{
		AppName:          "HAID",
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		Timezone:         time.UTC,
		FrontendBaseURL:  "http://localhost:5000",
		DefaultFromEmail: mail.Address{Name: "HAID", Address: "noreply@localhost"},
		Server: ServerConfig{
			Host:            "localhost",
			ShutdownTimeout: time.Second,
			DisableReqLogs:  true,
		},
		Stripe: StripeConfig{Currency: "inr"},
	}
}

func bindEnv(v *viper.Viper, key string, envNames ...string) {
	if err := v.BindEnv(append([]string{key}, envNames...)...); err != nil {
		log.Fatalf("config.BindEnv(%s): %v", key, err)
	}
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
