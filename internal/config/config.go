package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	JWT JWTSettings
	OTP OTPSettings
	SMS SMSSettings

	CleanupInterval time.Duration
	AllowedOrigins  []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	UserOTPs      string
	RefreshTokens string
	Listings      string
	KycDocuments  string
}

// JWTSettings configures access- and refresh-token issuance.
type JWTSettings struct {
	Secret             string
	Issuer             string
	Audience           string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// OTPSettings configures passcode generation and verification.
type OTPSettings struct {
	Length             int
	Validity           time.Duration
	MaxAttempts        int
	RateLimitPerMinute int
	// DebugExposeCode returns the raw code in API responses when the mock
	// provider delivered it. Never enable outside development.
	DebugExposeCode bool
}

// SMSSettings holds credential sets for every SMS provider variant.
// A provider is considered available only when its set is fully populated.
type SMSSettings struct {
	PreferredProvider string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	VonageAPIKey    string
	VonageAPISecret string
	VonageFromName  string

	SNSRegion string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			UserOTPs:      getEnv("DYNAMO_TABLE_USER_OTPS", "user_otps"),
			RefreshTokens: getEnv("DYNAMO_TABLE_REFRESH_TOKENS", "refresh_tokens"),
			Listings:      getEnv("DYNAMO_TABLE_LISTINGS", "vendor_listings"),
			KycDocuments:  getEnv("DYNAMO_TABLE_KYC_DOCUMENTS", "kyc_documents"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "marketplace-kyc-docs"),

		JWT: JWTSettings{
			Secret:             getEnv("JWT_SECRET", ""),
			Issuer:             getEnv("JWT_ISSUER", "marketplace-api"),
			Audience:           getEnv("JWT_AUDIENCE", "marketplace-users"),
			AccessTokenExpiry:  time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRY_MINUTES", 15)) * time.Minute,
			RefreshTokenExpiry: time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		},
		OTP: OTPSettings{
			Length:             getEnvInt("OTP_LENGTH", 6),
			Validity:           time.Duration(getEnvInt("OTP_VALIDITY_MINUTES", 10)) * time.Minute,
			MaxAttempts:        getEnvInt("OTP_MAX_ATTEMPTS", 3),
			RateLimitPerMinute: getEnvInt("OTP_RATE_LIMIT_PER_MINUTE", 3),
			DebugExposeCode:    getEnvBool("OTP_DEBUG_EXPOSE_CODE", false),
		},
		SMS: SMSSettings{
			PreferredProvider: getEnv("SMS_PREFERRED_PROVIDER", "Twilio"),
			TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
			TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
			TwilioFromNumber:  getEnv("TWILIO_FROM_NUMBER", ""),
			VonageAPIKey:      getEnv("VONAGE_API_KEY", ""),
			VonageAPISecret:   getEnv("VONAGE_API_SECRET", ""),
			VonageFromName:    getEnv("VONAGE_FROM_NAME", ""),
			SNSRegion:         getEnv("SNS_REGION", ""),
		},

		CleanupInterval: time.Duration(getEnvInt("CLEANUP_INTERVAL_MINUTES", 10)) * time.Minute,
		AllowedOrigins:  strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
