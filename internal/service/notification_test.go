package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/rapid_response_hub/internal/models"
	"github.com/shenikar/rapid_response_hub/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestNotificationService(t *testing.T) (NotificationService, *mocks.MockNotificationRepository) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockNotificationRepository(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	return NewNotificationService(repoMock, 20, logger), repoMock
}

func TestNotificationList_Limits(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		expected  int
	}{
		{"default", 0, 20},
		{"custom", 5, 5},
		{"capped", 1000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Подготовка
			service, repoMock := newTestNotificationService(t)
			ctx := context.Background()
			actor := citizen()
			expected := []*models.Notification{{ID: uuid.New()}}

			// Ожидания
			repoMock.EXPECT().ListByUser(ctx, actor.UserID, tt.expected, true).Return(expected, nil).Times(1)
			repoMock.EXPECT().CountUnread(ctx, actor.UserID).Return(3, nil).Times(1)

			// Действие
			notifications, unread, err := service.List(ctx, actor, tt.requested, true)

			// Проверки
			require.NoError(t, err)
			assert.Equal(t, expected, notifications)
			assert.Equal(t, 3, unread)
		})
	}
}

func TestNotificationMarkRead_OwnerScoped(t *testing.T) {
	// Подготовка
	service, repoMock := newTestNotificationService(t)
	ctx := context.Background()
	actor := citizen()
	id := uuid.New()

	// Ожидания
	repoMock.EXPECT().MarkRead(ctx, id, actor.UserID).Return(nil, models.ErrNotFound).Times(1)

	// Действие
	_, err := service.MarkRead(ctx, actor, id)

	// Проверки
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestNotificationMarkAllReadAndDelete(t *testing.T) {
	// Подготовка
	service, repoMock := newTestNotificationService(t)
	ctx := context.Background()
	actor := citizen()
	id := uuid.New()

	// Ожидания
	repoMock.EXPECT().MarkAllRead(ctx, actor.UserID).Return(int64(4), nil).Times(1)
	repoMock.EXPECT().Delete(ctx, id, actor.UserID).Return(nil).Times(1)

	// Действие
	n, err := service.MarkAllRead(ctx, actor)
	deleteErr := service.Delete(ctx, actor, id)

	// Проверки
	require.NoError(t, err)
	require.NoError(t, deleteErr)
	assert.Equal(t, int64(4), n)
}
