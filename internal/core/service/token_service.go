package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tiu-access/visit-access/internal/api/metrics"
	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
)

const (
	tokenLength  = 64
	tokenLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// maxTokenAttempts bounds the collision retry loop.
	maxTokenAttempts = 16
)

// TokenGenerator returns a candidate token value.
type TokenGenerator func() (string, error)

// TokenService issues and consumes single-use activation tokens.
type TokenService struct {
	repo     ports.TokenRepository
	generate TokenGenerator
	now      func() time.Time
	logger   zerolog.Logger
}

func NewTokenService(repo ports.TokenRepository, logger zerolog.Logger) *TokenService {
	return &TokenService{
		repo:     repo,
		generate: randomToken,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

// Issue generates a value no existing token uses and stores it pending.
func (s *TokenService) Issue(ctx context.Context, userID, issuedBy string, purpose domain.TokenPurpose) (*domain.ActivationToken, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		value, err := s.generate()
		if err != nil {
			return nil, fmt.Errorf("issue token: %w", err)
		}

		exists, err := s.repo.Exists(ctx, value)
		if err != nil {
			return nil, fmt.Errorf("issue token: %w", err)
		}
		if exists {
			metrics.TokenCollisionsTotal.Inc()
			continue
		}

		token := &domain.ActivationToken{
			ID:        uuid.NewString(),
			Value:     value,
			UserID:    userID,
			IssuedBy:  issuedBy,
			Purpose:   purpose,
			Status:    domain.TokenPending,
			CreatedAt: s.now(),
		}
		if err := s.repo.Insert(ctx, token); err != nil {
			// Lost a race against a concurrent insert of the same value.
			if errors.Is(err, domain.ErrTokenCollision) {
				metrics.TokenCollisionsTotal.Inc()
				continue
			}
			return nil, fmt.Errorf("issue token: %w", err)
		}

		metrics.TokensIssuedTotal.WithLabelValues(string(purpose)).Inc()
		s.logger.Info().Str("user_id", userID).Str("purpose", string(purpose)).Msg("token issued")
		return token, nil
	}
	return nil, fmt.Errorf("issue token: no unique value after %d attempts", maxTokenAttempts)
}

// Consume claims the token and runs action. The claim is an atomic
// pending -> consumed update, so at most one caller gets to run action for a
// given token. If action fails the token is released for another attempt.
func (s *TokenService) Consume(ctx context.Context, value string, purpose domain.TokenPurpose, action ports.TokenAction) error {
	token, err := s.repo.Claim(ctx, value, purpose)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			metrics.TokensConsumedTotal.WithLabelValues(string(purpose), "not_found").Inc()
		case errors.Is(err, domain.ErrInvalidState):
			metrics.TokensConsumedTotal.WithLabelValues(string(purpose), "already_used").Inc()
		}
		return err
	}

	if err := action(ctx, token); err != nil {
		metrics.TokensConsumedTotal.WithLabelValues(string(purpose), "action_failed").Inc()
		if relErr := s.repo.Release(ctx, value); relErr != nil {
			s.logger.Error().Err(relErr).Str("user_id", token.UserID).Msg("failed to release token after action error")
		}
		return err
	}

	metrics.TokensConsumedTotal.WithLabelValues(string(purpose), "ok").Inc()
	s.logger.Info().Str("user_id", token.UserID).Str("purpose", string(purpose)).Msg("token consumed")
	return nil
}

// randomToken draws tokenLength letters from crypto/rand.
func randomToken() (string, error) {
	limit := big.NewInt(int64(len(tokenLetters)))
	b := make([]byte, tokenLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = tokenLetters[n.Int64()]
	}
	return string(b), nil
}
