package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tiu-access/visit-access/internal/core/domain"
)

const collectionTokens = "tokens"

type TokenRepository struct {
	col *mongo.Collection
}

func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{col: db.Collection(collectionTokens)}
}

type tokenDoc struct {
	ID         string     `bson:"_id"`
	Value      string     `bson:"value"`
	UserID     string     `bson:"user_id"`
	IssuedBy   string     `bson:"issued_by"`
	Purpose    string     `bson:"purpose"`
	Status     string     `bson:"status"`
	CreatedAt  time.Time  `bson:"created_at"`
	ConsumedAt *time.Time `bson:"consumed_at,omitempty"`
}

func (d tokenDoc) toDomain() *domain.ActivationToken {
	return &domain.ActivationToken{
		ID:         d.ID,
		Value:      d.Value,
		UserID:     d.UserID,
		IssuedBy:   d.IssuedBy,
		Purpose:    domain.TokenPurpose(d.Purpose),
		Status:     domain.TokenStatus(d.Status),
		CreatedAt:  d.CreatedAt.UTC(),
		ConsumedAt: d.ConsumedAt,
	}
}

func (r *TokenRepository) Exists(ctx context.Context, value string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"value": value}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("token exists: %w", err)
	}
	return n > 0, nil
}

func (r *TokenRepository) Insert(ctx context.Context, t *domain.ActivationToken) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := tokenDoc{
		ID:        t.ID,
		Value:     t.Value,
		UserID:    t.UserID,
		IssuedBy:  t.IssuedBy,
		Purpose:   string(t.Purpose),
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrTokenCollision
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// Claim flips a pending token to consumed in a single conditional update.
// When nothing matched, a second read tells a missing token from a used one.
func (r *TokenRepository) Claim(ctx context.Context, value string, purpose domain.TokenPurpose) (*domain.ActivationToken, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"value":   value,
		"purpose": string(purpose),
		"status":  string(domain.TokenPending),
	}
	update := bson.M{"$set": bson.M{
		"status":      string(domain.TokenConsumed),
		"consumed_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc tokenDoc
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("claim token: %w", err)
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"value": value, "purpose": string(purpose)})
	if err != nil {
		return nil, fmt.Errorf("claim token: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrTokenNotFound
	}
	return nil, domain.ErrTokenConsumed
}

func (r *TokenRepository) Release(ctx context.Context, value string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"value": value, "status": string(domain.TokenConsumed)},
		bson.M{
			"$set":   bson.M{"status": string(domain.TokenPending)},
			"$unset": bson.M{"consumed_at": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("release token: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

// EnsureIndexes makes token values unique.
func (r *TokenRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "value", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
