package config

import (
	"os"
	"strings"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	PostgresDSN string

	EnableProposalReviews   bool
	DisplayProposalSpeakers bool
	DisplayProposalReviews  bool
	EnableResultEmails      bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "papercall"
	}

	return Config{
		ServiceName: service,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		EnableProposalReviews:   envBool("ENABLE_PROPOSAL_REVIEWS", true),
		DisplayProposalSpeakers: envBool("DISPLAY_PROPOSAL_SPEAKERS", true),
		DisplayProposalReviews:  envBool("DISPLAY_PROPOSAL_REVIEWS", true),
		EnableResultEmails:      envBool("ENABLE_RESULT_EMAILS", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
