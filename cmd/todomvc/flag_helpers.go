package main

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// emailEnvVar supplies --email when the flag is not set.
const emailEnvVar = "TODOMVC_EMAIL"

func parseDelay(value string) (time.Duration, error) {
	delay, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid delay %q: %w", value, err)
	}
	if delay < 0 {
		return 0, fmt.Errorf("invalid delay %q: must not be negative", value)
	}
	return delay, nil
}

func resolveEmail(flagValue string) (string, error) {
	if email := strings.TrimSpace(flagValue); email != "" {
		return email, nil
	}
	if email := strings.TrimSpace(os.Getenv(emailEnvVar)); email != "" {
		return email, nil
	}
	return "", fmt.Errorf("--email is required (or set %s)", emailEnvVar)
}
