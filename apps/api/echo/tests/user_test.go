package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/getskill/apps/api/echo"
	"github.com/trezcool/getskill/core/user"
	testutil "github.com/trezcool/getskill/tests"
)

func TestUserApi_Login(t *testing.T) {
	a := setup(t)
	testutil.CreateUser(t, a.UserRepo, "Gone Student", "gone@getskill.in", testutil.SeedPassword, user.RoleStudent, "cohort-1", false)

	tests := []httpTest{
		{
			name:     "missing fields",
			body:     marchallObj(t, echoapi.LoginRequest{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, echoapi.LoginRequest{Email: "student1@getskill.in", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name:     "unknown email",
			body:     marchallObj(t, echoapi.LoginRequest{Email: "ghost@getskill.in", Password: testutil.SeedPassword}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name:     "deactivated",
			body:     marchallObj(t, echoapi.LoginRequest{Email: "gone@getskill.in", Password: testutil.SeedPassword}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodPost, "/v1/users/login", "", tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("success", func(t *testing.T) {
		body := marchallObj(t, echoapi.LoginRequest{Email: "MENTOR1@getskill.in", Password: testutil.SeedPassword})
		rec := a.do(http.MethodPost, "/v1/users/login", "", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.LoginResponse
		unmarshal(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "mentor-1", resp.User.ID)
		assert.Equal(t, user.RoleMentor, resp.User.Role)

		// the issued token opens authed endpoints
		rec = a.do(http.MethodGet, "/v1/users/me", resp.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestUserApi_Me(t *testing.T) {
	a := setup(t)

	rec := a.do(http.MethodGet, "/v1/users/me", "")
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)

	rec = a.do(http.MethodGet, "/v1/users/me", "not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodGet, "/v1/users/me", a.token(t, "student-2"))
	require.Equal(t, http.StatusOK, rec.Code)
	var usr user.User
	unmarshal(t, rec, &usr)
	assert.Equal(t, "student-2", usr.ID)
	assert.Equal(t, "student2@getskill.in", usr.Email)
	assert.Equal(t, "cohort-1", usr.CohortID)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestUserApi_UnknownTokenSubject(t *testing.T) {
	a := setup(t)
	ghost := user.User{ID: "user-404", Name: "Ghost", Email: "ghost@getskill.in", Role: user.RoleStudent}

	rec := a.do(http.MethodGet, "/v1/users/me", getToken(t, a.Env, ghost))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserApi_Query(t *testing.T) {
	a := setup(t)

	tests := []httpTest{
		{
			name:     "student forbidden",
			path:     "/v1/users",
			token:    a.token(t, "student-1"),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "mentor filters by cohort",
			path:     "/v1/users?role=student&cohort_id=cohort-2",
			token:    a.token(t, "mentor-1"),
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodGet, tt.path, tt.token)
			checkCodeAndData(t, tt, rec)
			if rec.Code != http.StatusOK {
				return
			}
			var users []user.User
			unmarshal(t, rec, &users)
			assert.Len(t, users, 8)
			for _, usr := range users {
				assert.Equal(t, "cohort-2", usr.CohortID)
			}
		})
	}
}

func TestUserApi_PasswordReset(t *testing.T) {
	a := setup(t)
	body := marchallObj(t, echoapi.PasswordResetRequest{Email: "student3@getskill.in"})

	rec := a.do(http.MethodPost, "/v1/users/password-reset", "", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, a.Mail.SentMessages(), 1)

	// unknown addresses get the same answer and no mail
	body = marchallObj(t, echoapi.PasswordResetRequest{Email: "ghost@getskill.in"})
	rec = a.do(http.MethodPost, "/v1/users/password-reset", "", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, a.Mail.SentMessages(), 1)
}
