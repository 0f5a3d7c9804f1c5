package auth

import (
	"context"
	"errors"

	"github.com/dcamacho/danishop-backend/internal/modules/user"
	"golang.org/x/crypto/bcrypt"
)

type service struct {
	userRepo user.Repository
	tokens   *Tokens
}

// NewService creates a new auth service.
func NewService(userRepo user.Repository, tokens *Tokens) Service {
	return &service{userRepo: userRepo, tokens: tokens}
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	return s.tokens.Issue(u.ID, u.IsAdmin)
}
