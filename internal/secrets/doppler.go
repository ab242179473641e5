// Package secrets resolves sensitive configuration values through the
// Doppler CLI, with plain environment variables as the local fallback.
package secrets

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DopplerClient reads secrets from a Doppler project/config pair.
type DopplerClient struct {
	Project     string
	Config      string
	initialized bool
}

// NewDopplerClient creates a client for the given project and config.
func NewDopplerClient(project, config string) *DopplerClient {
	return &DopplerClient{Project: project, Config: config}
}

// Initialize verifies the Doppler CLI is available on PATH.
func (d *DopplerClient) Initialize() error {
	if _, err := exec.LookPath("doppler"); err != nil {
		return fmt.Errorf("doppler CLI not found: %w", err)
	}
	d.initialized = true
	return nil
}

// GetSecret returns the value for key. Environment variables win so that
// `doppler run` and plain .env setups behave the same; otherwise the
// value is fetched from the Doppler CLI directly.
func (d *DopplerClient) GetSecret(key string) (string, error) {
	if !d.initialized {
		if err := d.Initialize(); err != nil {
			return "", err
		}
	}

	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	cmd := exec.Command("doppler", "secrets", "get", key,
		"--project", d.Project,
		"--config", d.Config,
		"--plain")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", key, err)
	}

	return strings.TrimSpace(string(output)), nil
}

// GetSecretWithFallback returns the secret value, or fallback when the
// secret is missing or Doppler is unavailable.
func (d *DopplerClient) GetSecretWithFallback(key, fallback string) string {
	value, err := d.GetSecret(key)
	if err != nil || value == "" {
		return fallback
	}
	return value
}
