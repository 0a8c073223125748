// internal/auth/verifier.go
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const credentialKeyPrefix = "credential:"

// Verifier checks a presented personal access token against the digest
// stored for a username. Tokens are never stored; only their SHA-256 hex
// digests are, written by the provisioning path.
type Verifier struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewVerifier creates a Verifier backed by the given Redis client.
func NewVerifier(rdb *redis.Client, logger *slog.Logger) *Verifier {
	return &Verifier{
		rdb:    rdb,
		logger: logger,
	}
}

// Verify reports whether token is the currently authorized PAT for username.
// The boundary fails closed: an absent credential record and any store error
// both yield false, never a distinct error.
func (v *Verifier) Verify(ctx context.Context, username, token string) bool {
	stored, err := v.rdb.Get(ctx, credentialKeyPrefix+username).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			v.logger.Warn("Credential lookup failed, rejecting", "username", username, "error", err)
		}
		return false
	}

	presented := HashToken(token)
	valid := subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
	v.logger.Debug("PAT validation result", "username", username, "valid", valid)
	return valid
}

// HashToken returns the hex-encoded SHA-256 digest of a token. The algorithm
// is fixed: stored credential records were provisioned with the same digest
// and a change here would invalidate all of them.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
