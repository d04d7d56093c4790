package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Draft generation
	AIProvider    string // "gemini", "ollama" or "auto"
	GeminiAPIKey  string
	OllamaBaseURL string
	OllamaModel   string

	// Mail transport: "gmail" or "relay"
	MailTransport     string
	SenderName        string
	SenderEmail       string
	RelayBaseURL      string
	GmailClientID     string
	GmailClientSecret string
	GmailAccessToken  string
	GmailRefreshToken string
	IMAPAddr          string
	IMAPUsername      string
	IMAPPassword      string

	// Résumé/job ingestion
	ExtractorBaseURL string
	UploadDir        string

	// Semantic search (Chroma Cloud)
	ChromaAPIKey   string
	ChromaTenant   string
	ChromaDatabase string

	// Reviewer push notifications
	FirebaseCredentials string

	// Timing
	PollInterval   time.Duration
	PendingMaxAge  time.Duration
	RequestTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	pollInterval := 10 * time.Second
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			pollInterval = parsed
		}
	}

	pendingMaxAge := 24 * time.Hour
	if v := os.Getenv("PENDING_MAX_AGE"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			pendingMaxAge = parsed
		}
	}

	requestTimeout := 30 * time.Second
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			requestTimeout = parsed
		}
	}

	return &Config{
		Port:        getEnv("PORT", "8000"),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=outreach port=5432 sslmode=disable"),

		AIProvider:    getEnv("AI_PROVIDER", "auto"),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),

		MailTransport:     getEnv("MAIL_TRANSPORT", "relay"),
		SenderName:        getEnv("SENDER_NAME", "Recruiting Team"),
		SenderEmail:       getEnv("SENDER_EMAIL", "recruiter@company.com"),
		RelayBaseURL:      getEnv("RELAY_BASE_URL", "http://localhost:8001"),
		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailAccessToken:  getEnv("GMAIL_ACCESS_TOKEN", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		IMAPAddr:          getEnv("IMAP_ADDR", ""),
		IMAPUsername:      getEnv("IMAP_USERNAME", ""),
		IMAPPassword:      getEnv("IMAP_PASSWORD", ""),

		ExtractorBaseURL: getEnv("EXTRACTOR_BASE_URL", "http://localhost:8010"),
		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),

		ChromaAPIKey:   getEnv("CHROMA_API_KEY", ""),
		ChromaTenant:   getEnv("CHROMA_TENANT", ""),
		ChromaDatabase: getEnv("CHROMA_DATABASE", ""),

		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),

		PollInterval:   pollInterval,
		PendingMaxAge:  pendingMaxAge,
		RequestTimeout: requestTimeout,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
