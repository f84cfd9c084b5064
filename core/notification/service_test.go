package notification_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/getskill/core/notification"
	testutil "github.com/trezcool/getskill/tests"
)

func TestService_Notify(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	n, err := env.NotificationSvc.Notify(ctx, notification.NewNotification{
		UserID:  "student-4",
		Type:    " Info ",
		Title:   "Session moved",
		Message: "Thursday's session starts at 10:00.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, notification.TypeInfo, n.Type)
	assert.False(t, n.Read)

	notes, err := env.NotificationSvc.Query(ctx, notification.QueryFilter{UserID: "student-4"})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, n.ID, notes[0].ID)

	sent := env.Mail.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Session moved", sent[0].Subject)

	_, err = env.NotificationSvc.Notify(ctx, notification.NewNotification{UserID: "student-4", Type: "urgent", Title: "x", Message: "y"})
	assert.Error(t, err)
}

func TestService_MarkRead(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	_, err := env.NotificationSvc.MarkRead(ctx, "mentor-3", "notif-2")
	assert.Equal(t, notification.ErrNotFound, errors.Cause(err))
	assert.Equal(t, 0, env.Store.Saves())

	n, err := env.NotificationSvc.MarkRead(ctx, "mentor-1", "notif-2")
	require.NoError(t, err)
	assert.True(t, n.Read)

	count, err := env.NotificationSvc.UnreadCount(ctx, "mentor-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = env.NotificationSvc.MarkRead(ctx, "mentor-1", "notif-404")
	assert.Equal(t, notification.ErrNotFound, errors.Cause(err))
}

func TestService_MarkAllRead(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	for _, title := range []string{"One", "Two"} {
		_, err := env.NotificationSvc.Notify(ctx, notification.NewNotification{
			UserID: "mentor-3", Type: notification.TypeInfo, Title: title, Message: title,
		})
		require.NoError(t, err)
	}

	count, err := env.NotificationSvc.UnreadCount(ctx, "mentor-3")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	marked, err := env.NotificationSvc.MarkAllRead(ctx, "mentor-3")
	require.NoError(t, err)
	assert.Equal(t, 3, marked)

	unread, err := env.NotificationSvc.Query(ctx, notification.QueryFilter{UserID: "mentor-3", UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, unread)

	// other users are untouched
	count, err = env.NotificationSvc.UnreadCount(ctx, "mentor-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
