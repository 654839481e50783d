package backend

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type KeyKind string

const (
	KeyKindPublishable KeyKind = "publishable"
	KeyKindLegacyAnon  KeyKind = "legacy_anon"
	KeyKindSecret      KeyKind = "secret"
	KeyKindUnknown     KeyKind = "unknown"
)

const (
	publishableKeyPrefix = "sb_publishable_"
	secretKeyPrefix      = "sb_secret_"
)

// ClassifyKey inspects a backend API key without verifying it. Legacy keys are
// JWTs whose role claim tells an anon key from a service role key.
func ClassifyKey(key string) KeyKind {
	key = strings.TrimSpace(key)

	switch {
	case strings.HasPrefix(key, publishableKeyPrefix):
		return KeyKindPublishable
	case strings.HasPrefix(key, secretKeyPrefix):
		return KeyKindSecret
	case strings.Count(key, ".") != 2:
		return KeyKindUnknown
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return KeyKindUnknown
	}

	role, _ := claims["role"].(string)
	switch role {
	case "anon":
		return KeyKindLegacyAnon
	case "service_role", "supabase_admin":
		return KeyKindSecret
	default:
		return KeyKindUnknown
	}
}

// IsSecret reports whether the kind must never be shipped in a client handle.
func (k KeyKind) IsSecret() bool {
	return k == KeyKindSecret
}
