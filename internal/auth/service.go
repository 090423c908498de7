package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/djr-reciclagem/recebiveis/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Authenticate validates email/password credentials. Unknown, inactive and wrong-password
// accounts all fail with shared.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, normaliseEmail(email))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// CurrentUser loads the active user for a session.
func (s *Service) CurrentUser(ctx context.Context, id int64) (*User, error) {
	if id == 0 {
		return nil, shared.ErrNotFound
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

// CreateUser validates input, hashes the password and stores the account.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (*User, error) {
	in.Email = normaliseEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if err := s.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		verr := &shared.ValidationError{}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), userFieldMessages[fe.Field()])
		}
		return nil, verr
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUser(ctx, User{Email: in.Email, Name: in.Name, PasswordHash: string(hash), Role: in.Role})
}

var userFieldMessages = map[string]string{
	"Email":    "Informe um email válido.",
	"Name":     "Nome muito longo.",
	"Password": "A senha precisa ter pelo menos 8 caracteres.",
	"Role":     "Perfil deve ser admin ou readonly.",
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
