package earthengine

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"

	"github.com/earthlens/earthlens/internal/pkg/config"
)

// Scope is the OAuth scope Earth Engine REST calls are authorized under.
const Scope = "https://www.googleapis.com/auth/earthengine"

// resolveCredentials resolves Google credentials for Earth Engine.
// Application default credentials are tried first, then the configured
// service account (key file over inline JSON). The returned string
// describes which mode succeeded, for startup logging.
func resolveCredentials(ctx context.Context, cfg config.EarthEngineConfig) (*google.Credentials, string, error) {
	creds, defaultErr := google.FindDefaultCredentials(ctx, Scope)
	if defaultErr == nil {
		return creds, "default credentials", nil
	}

	if cfg.ServiceAccount == "" {
		return nil, "", fmt.Errorf("default credential init failed: %w", defaultErr)
	}

	var key []byte
	switch {
	case cfg.CredentialsFile != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, "", fmt.Errorf("read credentials file: %w", err)
		}
		key = b
	case cfg.PrivateKeyJSON != "":
		key = []byte(cfg.PrivateKeyJSON)
	default:
		return nil, "", fmt.Errorf("service account %s set but no credentials provided", cfg.ServiceAccount)
	}

	creds, err := google.CredentialsFromJSON(ctx, key, Scope)
	if err != nil {
		return nil, "", fmt.Errorf("service-account init failed: %w", err)
	}
	return creds, fmt.Sprintf("service account %s", cfg.ServiceAccount), nil
}
