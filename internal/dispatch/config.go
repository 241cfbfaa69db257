package dispatch

import (
	"time"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/utilities"
)

// DefaultScopeHeader carries the active hotel id on scoped requests.
const DefaultScopeHeader = "X-Hotel-Id"

// Config describes where the backend lives and how scope travels.
type Config struct {
	BaseURL     string
	ScopeHeader string
	Timeout     time.Duration
}

// ConfigFromEnv reads dispatcher config from environment variables.
func ConfigFromEnv() Config {
	return Config{
		BaseURL:     utilities.GetEnv("HOTELIT_API_URL", "http://localhost:8431/hotelit-api"),
		ScopeHeader: utilities.GetEnv("HOTELIT_SCOPE_HEADER", DefaultScopeHeader),
		Timeout:     utilities.GetEnvAsDuration("HOTELIT_HTTP_TIMEOUT", 30*time.Second),
	}
}
