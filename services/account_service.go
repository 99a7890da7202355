package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/repository"
	"github.com/yeremiapane/restaurant-tables/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	GenerateToken(userID uint, role string) (string, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	CreateUser(ctx context.Context, in RegisterInput) (*models.User, error)
	EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Profile(ctx context.Context, userID uint) (*models.User, error)
	ListUsers(ctx context.Context, role string) ([]models.User, error)
}

type accountService struct {
	users  repository.UserRepository
	tokens TokenIssuer
}

func NewAccountService(users repository.UserRepository, tokens TokenIssuer) AccountService {
	return &accountService{users: users, tokens: tokens}
}

func validRole(role string) bool {
	switch role {
	case models.RoleAdmin, models.RoleManager, models.RoleServer:
		return true
	}
	return false
}

// Register is public self sign-up. It only ever creates servers; other roles
// are handed out by an admin through CreateUser.
func (s *accountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role != "" && role != models.RoleServer {
		if !validRole(role) {
			return nil, validation(fmt.Errorf("role must be one of admin, manager, server"))
		}
		return nil, newError(KindForbidden, "Only admins can assign staff roles", nil)
	}
	in.Role = models.RoleServer
	return s.CreateUser(ctx, in)
}

// CreateUser stores a staff account with any known role. Callers must have
// checked that the actor is an admin.
func (s *accountService) CreateUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role == "" {
		role = models.RoleServer
	}
	if !validRole(role) {
		return nil, validation(fmt.Errorf("role must be one of admin, manager, server"))
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, internal("Error registering user", err)
	}
	if exists {
		return nil, newError(KindDuplicateKey, "Email already registered", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internal("Error registering user", err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(KindDuplicateKey, "Email already registered", err)
		}
		return nil, internal("Error registering user", err)
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)
	return user, nil
}

// EnsureAdmin creates the bootstrap admin account unless email is already
// registered, in which case the existing user is returned unchanged.
func (s *accountService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	existing, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal("Error seeding admin", err)
	}
	return s.CreateUser(ctx, RegisterInput{Name: name, Email: email, Password: password, Role: models.RoleAdmin})
}

func (s *accountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindUnauthorized, "Invalid credentials", nil)
		}
		return nil, internal("Error logging in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, newError(KindUnauthorized, "Invalid credentials", nil)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, internal("Error generating token", err)
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)
	return &LoginResult{Token: token, User: user}, nil
}

func (s *accountService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "User not found", "Error fetching profile")
	}
	return user, nil
}

// ListUsers returns users with role, or everyone when role is empty.
func (s *accountService) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	if role != "" && !validRole(role) {
		return nil, validation(fmt.Errorf("role must be one of admin, manager, server"))
	}
	users, err := s.users.List(ctx, role)
	if err != nil {
		return nil, internal("Error fetching users", err)
	}
	return users, nil
}
