package config

import (
	"crypto/rsa"
	"encoding/base64"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/nyumbani/billing-service/internal/utils"
)

const (
	AppName             = "billing-service"
	LDConnectionTimeout = 5 * time.Second
)

type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string
	DBUrl            string

	RSAPublicKey *rsa.PublicKey

	TwilioAccountSID string
	TwilioAuthToken  string
	SendgridAPIKey   string

	// Runtime flags, snapshotted from LaunchDarkly at boot with env
	// fallbacks so the service runs without an LD key.
	LDFlag_TwilioFromPhone    string
	LDFlag_SendgridFromEmail  string
	LDFlag_SandboxMode        bool
	LDFlag_RemindersEnabled   bool
	LDFlag_CORSHighSecurity   bool

	ldClient *ld.LDClient
}

func LoadConfig() *Config {
	// Best effort; deployed environments inject real env vars.
	_ = godotenv.Load()

	cfg := &Config{
		OrganizationName: getEnvDefault("ORGANIZATION_NAME", "Nyumbani"),
		AppName:          AppName,
		AppPort:          mustGetEnv("APP_PORT"),
		AppUrl:           mustGetEnv("APP_URL"),
		DBUrl:            mustGetEnv("DB_URL"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		SendgridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
	}

	pubB64 := mustGetEnv("RSA_PUBLIC_KEY_BASE64")
	pubPEM, err := base64.StdEncoding.DecodeString(pubB64)
	if err != nil {
		utils.Logger.WithError(err).Fatal("RSA_PUBLIC_KEY_BASE64 is not valid base64")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}
	cfg.RSAPublicKey = pubKey

	cfg.loadFlags()
	return cfg
}

func (c *Config) loadFlags() {
	// Env fallbacks apply when LD is absent or a flag read fails.
	c.LDFlag_TwilioFromPhone = getEnvDefault("TWILIO_FROM_PHONE", "")
	c.LDFlag_SendgridFromEmail = getEnvDefault("SENDGRID_FROM_EMAIL", "no-reply@nyumbani.co.ke")
	c.LDFlag_SandboxMode = getEnvBool("SANDBOX_MODE", false)
	c.LDFlag_RemindersEnabled = getEnvBool("RENT_REMINDERS_ENABLED", true)
	c.LDFlag_CORSHighSecurity = getEnvBool("CORS_HIGH_SECURITY", false)

	ldSDKKey := os.Getenv("LD_SDK_KEY")
	if ldSDKKey == "" {
		utils.Logger.Info("LD_SDK_KEY not set; using env flag values")
		return
	}

	ldClient, err := ld.MakeClient(ldSDKKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Warn("Failed to create LaunchDarkly client; using env flag values")
		return
	}
	c.ldClient = ldClient

	ctx := ldcontext.NewWithKind("service", AppName)

	if v, err := ldClient.StringVariation("twilio_from_phone", ctx, c.LDFlag_TwilioFromPhone); err == nil {
		c.LDFlag_TwilioFromPhone = v
	}
	if v, err := ldClient.StringVariation("sendgrid_from_email", ctx, c.LDFlag_SendgridFromEmail); err == nil {
		c.LDFlag_SendgridFromEmail = v
	}
	if v, err := ldClient.BoolVariation("notification_sandbox_mode", ctx, c.LDFlag_SandboxMode); err == nil {
		c.LDFlag_SandboxMode = v
	}
	if v, err := ldClient.BoolVariation("rent_reminders_enabled", ctx, c.LDFlag_RemindersEnabled); err == nil {
		c.LDFlag_RemindersEnabled = v
	}
	if v, err := ldClient.BoolVariation("cors_high_security", ctx, c.LDFlag_CORSHighSecurity); err == nil {
		c.LDFlag_CORSHighSecurity = v
	}

	utils.Logger.Debugf("flags: sandbox=%t reminders=%t cors_high_security=%t",
		c.LDFlag_SandboxMode, c.LDFlag_RemindersEnabled, c.LDFlag_CORSHighSecurity)
}

func (c *Config) Close() {
	if c.ldClient != nil {
		if err := c.ldClient.Close(); err != nil {
			utils.Logger.WithError(err).Warn("Error closing LaunchDarkly client")
		}
	}
}

func mustGetEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		utils.Logger.Fatalf("%s env var is missing", key)
	}
	return v
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		utils.Logger.Warnf("%s is not a boolean (%q); using default %t", key, v, def)
		return def
	}
	return parsed
}
