// Package auth is the identity store: it registers users and authenticates
// them by phone number and password. Authentication failures are explicit
// outcomes (common.ErrNoSuchUser, common.ErrBadPassword), not errors to
// abort on — the caller decides whether to retry or fall back to
// registration.
package auth

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"

	"peerchat/internal/common"
	"peerchat/internal/cryptox"
	"peerchat/internal/models"
	"peerchat/internal/repositories/users"
)

type Service struct {
	users users.Repository
}

func NewService(users users.Repository) *Service {
	return &Service{users: users}
}

// Register creates a new account. The password is stored as a salted
// argon2id digest, and a fresh ed25519 identity seed is generated and
// sealed under the password. Both the persisted user and the plain seed
// are returned so the caller can bind the network endpoint right away.
func (s *Service) Register(ctx context.Context, name string, phoneNo uint64, password []byte) (*models.User, []byte, error) {
	seed := common.GenerateRandByteArray(ed25519.SeedSize)

	sealed, err := cryptox.SealSecret(seed, password)
	if err != nil {
		return nil, nil, fmt.Errorf("sealing identity seed: %w", err)
	}

	user := &models.User{
		Name:      name,
		PhoneNo:   phoneNo,
		Password:  cryptox.HashPassword(password),
		SecretKey: sealed,
		Admin:     false,
	}

	user, err = s.users.Create(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, seed, nil
}

// Authenticate looks the account up by phone number and verifies the
// password. On success it also unseals the identity seed.
func (s *Service) Authenticate(ctx context.Context, phoneNo uint64, password []byte) (*models.User, []byte, error) {
	user, err := s.users.GetByPhone(ctx, phoneNo)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrNoSuchUser
		}
		return nil, nil, err
	}

	if !cryptox.VerifyPassword(user.Password, password) {
		return nil, nil, common.ErrBadPassword
	}

	seed, err := cryptox.OpenSecret(user.SecretKey, password)
	if err != nil {
		return nil, nil, fmt.Errorf("unsealing identity seed: %w", err)
	}

	return user, seed, nil
}
