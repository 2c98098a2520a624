package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/rapid_response_hub/internal/auth"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/shenikar/rapid_response_hub/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestAuthService(t *testing.T) (*authService, *mocks.MockUserRepository, *mocks.MockNotifier, *auth.TokenManager) {
	ctrl := gomock.NewController(t)
	usersMock := mocks.NewMockUserRepository(ctrl)
	notifierMock := mocks.NewMockNotifier(ctrl)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	return NewAuthService(usersMock, tokens, notifierMock, logger).(*authService), usersMock, notifierMock, tokens
}

func TestRegister_AlwaysCitizen(t *testing.T) {
	// Подготовка
	service, usersMock, notifierMock, tokens := newTestAuthService(t)
	ctx := context.Background()

	// Ожидания
	usersMock.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			assert.Equal(t, models.RoleCitizen, u.Role)
			assert.Equal(t, "new@example.com", u.Email)
			assert.True(t, auth.CheckPassword("secret123", u.PasswordHash))
			u.ID = uuid.New()
			return nil
		}).Times(1)
	notifierMock.EXPECT().SendWelcome(ctx, "new@example.com", "Ольга").Return(false).Times(1)

	// Действие
	result, err := service.Register(ctx, models.Registration{Name: "Ольга", Email: " New@Example.com", Password: "secret123"})

	// Проверки
	require.NoError(t, err)
	actor, err := tokens.Parse(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, actor.UserID)
	assert.Equal(t, models.RoleCitizen, actor.Role)
}

func TestRegister_EmailTaken(t *testing.T) {
	// Подготовка
	service, usersMock, _, _ := newTestAuthService(t)
	ctx := context.Background()

	// Ожидания
	usersMock.EXPECT().Create(ctx, gomock.Any()).Return(models.ErrEmailTaken).Times(1)

	// Действие
	_, err := service.Register(ctx, models.Registration{Name: "Ольга", Email: "dup@example.com", Password: "secret123"})

	// Проверки
	assert.ErrorIs(t, err, models.ErrEmailTaken)
}

func TestRegister_ShortPassword(t *testing.T) {
	service, _, _, _ := newTestAuthService(t)

	_, err := service.Register(context.Background(), models.Registration{Name: "a", Email: "a@b.c", Password: "123"})

	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestLogin(t *testing.T) {
	service, usersMock, _, _ := newTestAuthService(t)
	ctx := context.Background()
	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	user := &models.User{ID: uuid.New(), Email: "user@example.com", PasswordHash: hash, Role: models.RoleAdmin}

	t.Run("success", func(t *testing.T) {
		usersMock.EXPECT().GetByEmail(ctx, "user@example.com").Return(user, nil).Times(1)

		result, err := service.Login(ctx, "USER@example.com", "correct-horse")

		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, user, result.User)
	})

	t.Run("wrong password", func(t *testing.T) {
		usersMock.EXPECT().GetByEmail(ctx, "user@example.com").Return(user, nil).Times(1)

		_, err := service.Login(ctx, "user@example.com", "nope")

		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		usersMock.EXPECT().GetByEmail(ctx, "ghost@example.com").Return(nil, models.ErrNotFound).Times(1)

		_, err := service.Login(ctx, "ghost@example.com", "correct-horse")

		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})
}

func TestCreateAdmin_PromotesExistingUser(t *testing.T) {
	// Подготовка
	service, usersMock, _, _ := newTestAuthService(t)
	ctx := context.Background()
	existing := &models.User{ID: uuid.New(), Name: "Петр", Email: "petr@example.com", Role: models.RoleCitizen}

	// Ожидания
	usersMock.EXPECT().GetByEmail(ctx, "petr@example.com").Return(existing, nil).Times(1)
	usersMock.EXPECT().
		UpdateCredentials(ctx, existing).
		Do(func(_ context.Context, u *models.User) {
			assert.Equal(t, models.RoleAdmin, u.Role)
			assert.True(t, auth.CheckPassword("new-password", u.PasswordHash))
		}).
		Return(nil).Times(1)

	// Действие
	user, err := service.CreateAdmin(ctx, "", "petr@example.com", "new-password")

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, "Петр", user.Name)
}

func TestCreateAdmin_CreatesNewUser(t *testing.T) {
	// Подготовка
	service, usersMock, _, _ := newTestAuthService(t)
	ctx := context.Background()

	// Ожидания
	usersMock.EXPECT().GetByEmail(ctx, "root@example.com").Return(nil, models.ErrNotFound).Times(1)
	usersMock.EXPECT().
		Create(ctx, gomock.Any()).
		Do(func(_ context.Context, u *models.User) {
			assert.Equal(t, models.RoleAdmin, u.Role)
			assert.Equal(t, "Admin", u.Name)
		}).
		Return(nil).Times(1)

	// Действие
	_, err := service.CreateAdmin(ctx, "", "root@example.com", "admin123")

	// Проверки
	require.NoError(t, err)
}

func TestMe(t *testing.T) {
	service, usersMock, _, _ := newTestAuthService(t)
	ctx := context.Background()
	actor := citizen()
	user := &models.User{ID: actor.UserID}

	usersMock.EXPECT().GetByID(ctx, actor.UserID).Return(user, nil).Times(1)

	got, err := service.Me(ctx, actor)

	require.NoError(t, err)
	assert.Equal(t, user, got)
}
