package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ndanilov/itemvault/internal/hash"
	"github.com/ndanilov/itemvault/internal/logging"
	"github.com/ndanilov/itemvault/internal/models"
	"github.com/ndanilov/itemvault/internal/mykafka"
	"github.com/ndanilov/itemvault/internal/repo"
)

const userEventsTopic = "user_events"

// UserService is the user directory: account creation, login checks and
// privilege elevation.
type UserService struct {
	Repo     *repo.GormRepo
	Producer *mykafka.Producer
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.register")

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserExists) {
			l.Warn("register_failed", "status", 409, "reason", "username taken")
			return nil, err
		}
		l.Error("register_failed", "status", 500, "reason", "db_error", "error", err)
		return nil, err
	}

	s.publish(ctx, user.ID, map[string]interface{}{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	l.Info("register_success", "user_id", user.ID)
	return user, nil
}

// Authenticate returns (nil, nil) for an unknown username or a wrong
// password. Failing a login is a normal outcome, not an error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, nil
	}
	return user, nil
}

// Elevate grants the superuser role to the target account. The caller-side
// role check lives at the route, on the same gate as hard delete.
func (s *UserService) Elevate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.elevate")

	user, err := s.Repo.ElevateUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("elevate_failed", "status", 404, "reason", "user not found")
		} else {
			l.Error("elevate_failed", "status", 500, "reason", "db_error", "error", err)
		}
		return nil, err
	}

	s.publish(ctx, user.ID, map[string]interface{}{
		"type":     "user_elevated",
		"user_id":  user.ID,
		"username": user.Username,
	})

	l.Info("elevate_success", "user_id", user.ID)
	return user, nil
}

func (s *UserService) ListAll(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *UserService) publish(ctx context.Context, key uuid.UUID, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Producer.PublishEvent(ctx, userEventsTopic, fmt.Sprint(key), event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "topic", userEventsTopic, "error", err)
	}
}
