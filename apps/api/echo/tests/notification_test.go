package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/getskill/apps/api/echo"
	"github.com/trezcool/getskill/core/notification"
)

func TestNotificationApi(t *testing.T) {
	a := setup(t)
	mentor1 := a.token(t, "mentor-1")

	unread := func(token string) int {
		rec := a.do(http.MethodGet, "/v1/notifications/unread-count", token)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp echoapi.CountResponse
		unmarshal(t, rec, &resp)
		return resp.Count
	}
	before := unread(mentor1)
	require.NotZero(t, before)

	// notifications of other users are not found
	rec := a.do(http.MethodPost, "/v1/notifications/notif-3/read", mentor1)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodPost, "/v1/notifications/notif-2/read", mentor1)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var n notification.Notification
	unmarshal(t, rec, &n)
	assert.True(t, n.Read)
	assert.Equal(t, before-1, unread(mentor1))

	rec = a.do(http.MethodGet, "/v1/notifications", mentor1)
	require.Equal(t, http.StatusOK, rec.Code)
	var notes []notification.Notification
	unmarshal(t, rec, &notes)
	for _, note := range notes {
		assert.Equal(t, "mentor-1", note.UserID)
	}

	mentor3 := a.token(t, "mentor-3")
	unread3 := unread(mentor3)
	require.NotZero(t, unread3)
	rec = a.do(http.MethodPost, "/v1/notifications/read-all", mentor3)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp echoapi.CountResponse
	unmarshal(t, rec, &resp)
	assert.Equal(t, unread3, resp.Count)
	assert.Zero(t, unread(mentor3))
}
