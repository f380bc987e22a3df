package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
)

const (
	credentialIssuer = "visit-access"
	defaultPassTTL   = 30 * 24 * time.Hour
)

// CredentialIssuer signs a visit pass that encodes the verification address
// and keeps it in Redis under credential:<handle> until it expires. The
// scannable rendering of the pass is left to the client.
type CredentialIssuer struct {
	client  *redis.Client
	secret  []byte
	ttl     time.Duration
	baseURL string
	now     func() time.Time
}

func NewCredentialIssuer(client *redis.Client, secret, baseURL string, ttl time.Duration) *CredentialIssuer {
	if ttl <= 0 {
		ttl = defaultPassTTL
	}
	return &CredentialIssuer{
		client:  client,
		secret:  []byte(secret),
		ttl:     ttl,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *CredentialIssuer) Issue(ctx context.Context, verificationAddress string) (ports.IssuedCredential, error) {
	handle := uuid.NewString()
	now := c.now()

	pass, err := c.sign(handle, verificationAddress, now)
	if err != nil {
		return ports.IssuedCredential{}, fmt.Errorf("sign pass: %w", err)
	}

	payload, err := json.Marshal(ports.StoredCredential{
		Handle:              handle,
		Credential:          pass,
		VerificationAddress: verificationAddress,
		IssuedAt:            now,
	})
	if err != nil {
		return ports.IssuedCredential{}, fmt.Errorf("encode pass: %w", err)
	}
	if err := c.client.Set(ctx, credentialKey(handle), payload, c.ttl).Err(); err != nil {
		return ports.IssuedCredential{}, fmt.Errorf("store pass: %w", err)
	}

	return ports.IssuedCredential{
		Handle:   handle,
		Location: c.baseURL + "/credentials/" + handle,
	}, nil
}

func (c *CredentialIssuer) Lookup(ctx context.Context, handle string) (*ports.StoredCredential, error) {
	raw, err := c.client.Get(ctx, credentialKey(handle)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("load pass: %w", err)
	}
	var cred ports.StoredCredential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return nil, fmt.Errorf("decode pass: %w", err)
	}
	return &cred, nil
}

// sign returns an HS256 token whose subject is the verification address.
func (c *CredentialIssuer) sign(handle, verificationAddress string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        handle,
		Issuer:    credentialIssuer,
		Subject:   verificationAddress,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func credentialKey(handle string) string {
	return "credential:" + handle
}
