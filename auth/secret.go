package auth

import (
	"errors"

	"github.com/rs/zerolog/log"
)

const placeholderSecret = "default-secret-change-in-production"

// #nosec G101 -- placeholder used only outside production
const devDefaultSecret = "dev-only-secret-change-me"

// Default admin login for fresh non-production installs.
const (
	DefaultAdminUsername  = "admin"
	DefaultAdminPassword  = "password123"
	DefaultAdminSecretKey = "12345-67890-12345"
)

// ResolveSessionSecret picks the key used to sign session tokens.
// In production (APP_ENV=production), an empty or placeholder secret causes an error.
// Elsewhere it falls back to devDefaultSecret with a warning.
func ResolveSessionSecret(appEnv string, raw string) ([]byte, error) {
	if appEnv == "production" {
		if raw == "" {
			return nil, errors.New("SESSION_SECRET must be set in production")
		}
		if raw == placeholderSecret {
			return nil, errors.New("SESSION_SECRET must not be the placeholder value in production")
		}
		return []byte(raw), nil
	}

	if raw == "" {
		log.Warn().Msg("SESSION_SECRET is not set, using dev default secret (not for production)")
		return []byte(devDefaultSecret), nil
	}
	return []byte(raw), nil
}

// ResolveAdminPassword refuses the well-known default password in production.
func ResolveAdminPassword(appEnv string, raw string) (string, error) {
	if raw == "" {
		raw = DefaultAdminPassword
	}
	if appEnv == "production" && raw == DefaultAdminPassword {
		return "", errors.New("ADMIN_PASSWORD must be changed from the default in production")
	}
	return raw, nil
}
