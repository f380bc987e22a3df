// Command bootstrap seeds the role reference data and the first admin
// account. Running it again is safe: an existing account only receives the
// admin role.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
	mongodb "github.com/tiu-access/visit-access/internal/infrastructure/db/mongo"
	"github.com/tiu-access/visit-access/internal/pkg/cipher"
	"github.com/tiu-access/visit-access/internal/pkg/config"
	"github.com/tiu-access/visit-access/pkg/logger"
)

type adminInput struct {
	FullName string
	Email    string
	Password string
}

func main() {
	var in adminInput
	envFile := pflag.String("env-file", ".env", "optional dotenv file loaded before the environment")
	pflag.StringVar(&in.Email, "email", "", "admin email (required)")
	pflag.StringVar(&in.FullName, "name", "Administrator", "admin display name")
	pflag.StringVar(&in.Password, "password", os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"), "admin password, defaults to $BOOTSTRAP_ADMIN_PASSWORD")
	pflag.Parse()

	ctx := context.Background()
	cfg, err := config.Load(ctx, *envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "visit-access-bootstrap"})

	store, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "visit-access-bootstrap"})
	if err != nil {
		log.Fatal().Err(err).Msg("connect")
	}
	defer func() { _ = store.Close(context.Background()) }()
	db := store.DB

	users := mongodb.NewUserRepository(db)
	roles := mongodb.NewRoleRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, roles, mongodb.NewTokenRepository(db), mongodb.NewRequestRepository(db)); err != nil {
		log.Fatal().Err(err).Msg("indexes")
	}
	if err := roles.EnsureRoles(ctx, domain.AllRoles()); err != nil {
		log.Fatal().Err(err).Msg("roles")
	}

	encoder, err := cipher.NewEncoder(cfg.Auth.PasswordScheme, cfg.Auth.CryptToken)
	if err != nil {
		log.Fatal().Err(err).Msg("password encoder")
	}

	user, created, err := bootstrapAdmin(ctx, users, roles, encoder, in, log)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap admin")
	}
	log.Info().Str("user_id", user.ID).Str("email", user.Email).Bool("created", created).Msg("admin ready")
}

// bootstrapAdmin creates an activated admin, or grants admin to the account
// that already owns the email.
func bootstrapAdmin(
	ctx context.Context,
	users ports.UserRepository,
	roles ports.RoleRepository,
	encoder ports.PasswordEncoder,
	in adminInput,
	log zerolog.Logger,
) (*domain.User, bool, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(in.Email))
	if err != nil {
		return nil, false, domain.Validationf("invalid admin email %q", in.Email)
	}
	email := strings.ToLower(addr.Address)

	user, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		log.Info().Str("email", email).Msg("account exists, granting admin")
		return user, false, grantAdmin(ctx, roles, user.ID)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, err
	}

	if len(in.Password) < 8 {
		return nil, false, domain.Validationf("admin password must be at least 8 characters")
	}
	encoded, err := encoder.Encode(in.Password)
	if err != nil {
		return nil, false, fmt.Errorf("encode password: %w", err)
	}

	now := time.Now().UTC()
	user = &domain.User{
		ID:        uuid.NewString(),
		FullName:  strings.TrimSpace(in.FullName),
		Email:     email,
		Password:  encoded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	if err := grantAdmin(ctx, roles, user.ID); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func grantAdmin(ctx context.Context, roles ports.RoleRepository, userID string) error {
	err := roles.Assign(ctx, domain.RoleAssignment{UserID: userID, RoleID: domain.RoleAdmin})
	if errors.Is(err, domain.ErrRoleAssigned) {
		return nil
	}
	return err
}
