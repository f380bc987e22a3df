package mongo

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tiu-access/visit-access/internal/core/domain"
)

const (
	collectionRoles     = "roles"
	collectionUserRoles = "user_roles"
)

// RoleRepository stores the role reference data and the user_roles
// relation. A unique (user_id, role_id) index enforces one row per pair.
type RoleRepository struct {
	roles     *mongo.Collection
	userRoles *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{
		roles:     db.Collection(collectionRoles),
		userRoles: db.Collection(collectionUserRoles),
	}
}

type userRoleDoc struct {
	UserID     string    `bson:"user_id"`
	RoleID     int       `bson:"role_id"`
	AssignedAt time.Time `bson:"assigned_at"`
}

func (r *RoleRepository) RolesOf(ctx context.Context, userID string) (domain.RoleSet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.userRoles.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}
	var docs []userRoleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("find roles: %w", err)
	}

	set := make(domain.RoleSet, 0, len(docs))
	for _, d := range docs {
		set = append(set, domain.RoleID(d.RoleID))
	}
	slices.Sort(set)
	return set, nil
}

func (r *RoleRepository) Assign(ctx context.Context, a domain.RoleAssignment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userRoleDoc{UserID: a.UserID, RoleID: int(a.RoleID), AssignedAt: time.Now().UTC()}
	if _, err := r.userRoles.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrRoleAssigned
		}
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

func (r *RoleRepository) Remove(ctx context.Context, a domain.RoleAssignment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.userRoles.DeleteOne(ctx, bson.M{"user_id": a.UserID, "role_id": int(a.RoleID)})
	if err != nil {
		return fmt.Errorf("remove role: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRoleNotAssigned
	}
	return nil
}

// EnsureRoles upserts the static role rows by id.
func (r *RoleRepository) EnsureRoles(ctx context.Context, roles []domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(roles))
	for _, role := range roles {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": int(role.ID)}).
			SetUpdate(bson.M{"$set": bson.M{"name": role.Name}}).
			SetUpsert(true))
	}
	if len(models) == 0 {
		return nil
	}
	if _, err := r.roles.BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("ensure roles: %w", err)
	}
	return nil
}

func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.userRoles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "role_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
