package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/eduviz/eduviz-chat-api/logging"
	"github.com/eduviz/eduviz-chat-api/models"
)

// Config holds the project config values
type Config struct {
	URL            string
	DatabaseName   string
	BaseURL        string
	Port           string
	Env            string
	LogFile        string
	JWTSecret      string
	CloudinaryURL  string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

const (
	defaultDBURI          = "mongodb://127.0.0.1:27017"
	defaultDBName         = "EduViz"
	defaultPort           = "8080"
	defaultOrigins        = "http://localhost:5173,http://localhost:8080"
	defaultRequestTimeout = 30 * time.Second
)

// New sets up all config related services
func New() *Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	conf := &Config{
		URL:            getEnv("DB_URI", defaultDBURI),
		DatabaseName:   getEnv("DB_NAME", defaultDBName),
		BaseURL:        os.Getenv("BASE_URL"),
		Port:           getEnv("PORT", defaultPort),
		Env:            getEnv("ENV", "local"),
		LogFile:        os.Getenv("LOG_FILE"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		CloudinaryURL:  os.Getenv("CLOUDINARY_URL"),
		AllowedOrigins: splitList(getEnv("CORS_ORIGINS", defaultOrigins)),
		RequestTimeout: defaultRequestTimeout,
	}
	if d, err := time.ParseDuration(os.Getenv("REQUEST_TIMEOUT")); err == nil && d > 0 {
		conf.RequestTimeout = d
	}

	//setup zap logger and replace default logger
	logger, err := setLogger(conf.Env, conf.LogFile)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	return conf
}

func setLogger(env, logFile string) (*zap.Logger, error) {
	return logging.New(env, logFile)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	zap.S().Errorw(message,
		"status", httpStatusCode,
		"error", errText,
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: errText}})
	_, _ = w.Write(b)
}
