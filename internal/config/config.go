package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr            string
	ExpectedUserAgent   string
	StripeSecretKey     string
	MailjetPublicKey    string
	MailjetPrivateKey   string
	MailjetSendURL      string
	AdminFromEmail      string
	AdminFromName       string
	OutboundTimeout     time.Duration
	ShutdownGracePeriod time.Duration

	// ShipmentEmailToCustomer addresses shipment notices to the real
	// customer email instead of the admin address. Off by default until
	// product intent is confirmed.
	ShipmentEmailToCustomer bool
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func Load() Config {
	return Config{
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		ExpectedUserAgent:       getEnv("GOOD_USER_AGENT", ""),
		StripeSecretKey:         getEnv("STRIPE_SECRET_KEY", ""),
		MailjetPublicKey:        getEnv("MJ_APIKEY_PUBLIC", ""),
		MailjetPrivateKey:       getEnv("MJ_APIKEY_PRIVATE", ""),
		MailjetSendURL:          getEnv("MAILJET_SEND_URL", "https://api.mailjet.com/v3.1/send"),
		AdminFromEmail:          getEnv("ADMIN_FROM_EMAIL", ""),
		AdminFromName:           getEnv("ADMIN_FROM_NAME", "webstore"),
		OutboundTimeout:         parseDuration("OUTBOUND_TIMEOUT", 10*time.Second),
		ShutdownGracePeriod:     parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		ShipmentEmailToCustomer: parseBool("SHIPMENT_EMAIL_TO_CUSTOMER", false),
	}
}

func parseDuration(key string, def time.Duration) time.Duration {
	if raw, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return def
}

func parseBool(key string, def bool) bool {
	if raw, ok := os.LookupEnv(key); ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
	}
	return def
}
