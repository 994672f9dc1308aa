package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"coinmate/internal/auth"
	"coinmate/internal/db"
	"coinmate/internal/loader"
	"coinmate/internal/models"
	"coinmate/internal/scope"
	"coinmate/internal/store"
	"coinmate/internal/validator"

	"github.com/jmoiron/sqlx"
)

const (
	personalSpaceName        = "Personal"
	personalSpaceDescription = "Personal space"
)

type AuthConfig struct {
	Secret       string
	TokenTTL     time.Duration
	RefreshAfter time.Duration
}

type UserService struct {
	mutator
	users   UserStore
	spaces  SpaceStore
	members SpaceUserStore
	cfg     AuthConfig
	byID    *loader.Def[string, *models.User]
}

func NewUserService(txRunner db.TxRunner, users UserStore, spaces SpaceStore, members SpaceUserStore, audit AuditStore, cfg AuthConfig) *UserService {
	return &UserService{
		mutator: newMutator(txRunner, audit, nil),
		users:   users,
		spaces:  spaces,
		members: members,
		cfg:     cfg,
		byID: loader.New("user", fetchByID(users.GetByIDs, func(u *models.User) string {
			return u.ID
		})),
	}
}

type SignUpInput struct {
	Email           string `json:"email" validate:"required,email,max=256"`
	Password        string `json:"password" validate:"required,min=8,max=64"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult carries a session token. Token is empty when Me decides the
// current token is still fresh.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token,omitempty"`
}

// SignUp creates the user, their Personal space and their admin membership
// of it in one transaction.
func (s *UserService) SignUp(ctx context.Context, sc *scope.Scope, input SignUpInput) (AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validator.Struct(input); err != nil {
		return AuthResult{}, err
	}
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	var user models.User
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		fields := store.Fields{}.Set("email", input.Email).Set("password_hash", hash)
		created, err := s.users.Create(ctx, tx, fields)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if err := s.record(ctx, tx, sc, models.ObjectUser, models.OperationCreate, created.ID, fields); err != nil {
			return err
		}
		description := personalSpaceDescription
		if _, err := createSpace(ctx, tx, s.mutator, s.spaces, s.members, sc, created.ID, CreateSpaceInput{
			Name:        personalSpaceName,
			Description: &description,
		}); err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return AuthResult{}, &ConflictError{Entity: "User"}
		}
		return AuthResult{}, err
	}
	s.byID.Prime(ctx, sc, user.ID, &user)
	return s.issue(&user)
}

func (s *UserService) SignIn(ctx context.Context, sc *scope.Scope, input SignInInput) (AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	if err := validator.Struct(input); err != nil {
		return AuthResult{}, err
	}
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		return AuthResult{}, ErrInvalidCredentials
	}
	s.byID.Prime(ctx, sc, user.ID, &user)
	return s.issue(&user)
}

// Me returns the caller and, once their token is older than RefreshAfter, a fresh token.
func (s *UserService) Me(ctx context.Context, sc *scope.Scope) (AuthResult, error) {
	if !sc.Authenticated() {
		return AuthResult{}, ErrUnauthorized
	}
	user, err := s.Gen(ctx, sc, sc.UserID())
	if err != nil {
		return AuthResult{}, err
	}
	if user == nil {
		return AuthResult{}, ErrUnauthorized
	}
	issuedAt := sc.Session().IssuedAt
	if s.cfg.RefreshAfter > 0 && !issuedAt.IsZero() && s.now().Sub(issuedAt) >= s.cfg.RefreshAfter {
		return s.issue(user)
	}
	return AuthResult{User: user}, nil
}

// Gen returns the user only to themselves.
func (s *UserService) Gen(ctx context.Context, sc *scope.Scope, id string) (*models.User, error) {
	user, err := s.byID.Load(ctx, sc, id)
	if err != nil {
		return nil, err
	}
	return owned(user, func(u *models.User) string { return u.ID }, sc), nil
}

func (s *UserService) issue(user *models.User) (AuthResult, error) {
	token, err := auth.GenerateToken(s.cfg.Secret, user.ID, s.cfg.TokenTTL)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
