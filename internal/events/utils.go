package events

import (
	"net/http"
	"os"
	"slices"
	"strings"

	"codeberg.org/tubetrack/server/internal/logger"
	"github.com/google/uuid"
)

func allowedOrigins() []string {
	envOrigins := os.Getenv("ALLOWED_ORIGINS")
	if envOrigins == "" {
		return []string{}
	}

	origins := strings.Split(envOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return origins
}

// outside production every origin is accepted
func CheckOrigin(r *http.Request) bool {
	if os.Getenv("ENVIRONMENT") != "production" {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		logger.Warn("websocket connection with no origin header")
		return false
	}

	allowed := allowedOrigins()
	if slices.Contains(allowed, origin) {
		return true
	}

	logger.Warn("websocket origin rejected",
		"origin", origin,
		"allowed_origins", allowed,
	)

	return false
}

func GenerateClientID() string {
	return uuid.NewString()
}
