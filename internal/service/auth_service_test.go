package service

import (
	"context"
	"testing"
	"time"

	"healthyhowlz/backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	trainer := newTrainer()
	trainer.PasswordHash = "secret-hash"
	userRepo := newFakeUserRepo(trainer)
	svc := NewAuthService(userRepo, "test-secret", time.Hour)

	t.Run("returns the record without the password hash", func(t *testing.T) {
		user, err := svc.GetProfile(ctx, trainer.ID)
		require.NoError(t, err)
		assert.Equal(t, trainer.ID, user.ID)
		assert.Equal(t, trainer.Email, user.Email)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.GetProfile(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("changes the display name", func(t *testing.T) {
		trainer := newTrainer()
		userRepo := newFakeUserRepo(trainer)
		svc := NewAuthService(userRepo, "test-secret", time.Hour)

		user, err := svc.UpdateProfile(ctx, trainer.ID, "New Name")
		require.NoError(t, err)
		assert.Equal(t, "New Name", user.Name)
		assert.Equal(t, "New Name", userRepo.users[trainer.ID].Name)
		assert.Equal(t, trainer.Email, user.Email, "email is immutable")
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		trainer := newTrainer()
		userRepo := newFakeUserRepo(trainer)
		svc := NewAuthService(userRepo, "test-secret", time.Hour)

		_, err := svc.UpdateProfile(ctx, trainer.ID, "")
		assert.Error(t, err)
		assert.Equal(t, "Trainer", userRepo.users[trainer.ID].Name)
	})
}
