package user_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/getskill/core/user"
	testutil "github.com/trezcool/getskill/tests"
)

func TestService_Authenticate(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	testutil.CreateUser(t, env.UserRepo, "Old Student", "old@getskill.in", testutil.SeedPassword, user.RoleStudent, "cohort-1", false)

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{"valid", " Mentor1@GetSkill.in ", testutil.SeedPassword, nil},
		{"wrong password", "mentor1@getskill.in", "nope", user.ErrInvalidCredentials},
		{"unknown email", "ghost@getskill.in", testutil.SeedPassword, user.ErrInvalidCredentials},
		{"deactivated", "old@getskill.in", testutil.SeedPassword, user.ErrAccountDeactivated},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			usr, err := env.UserSvc.Authenticate(ctx, tc.email, tc.pwd)
			if tc.wantErr != nil {
				assert.Equal(t, tc.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "mentor-1", usr.ID)
			assert.False(t, usr.LastLogin.IsZero())
		})
	}
}

func TestService_SetPassword(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		data    user.SetPassword
		wantErr bool
	}{
		{"too short", user.SetPassword{Email: "student3@getskill.in", Password: "Ab1!"}, true},
		{"all numeric", user.SetPassword{Email: "student3@getskill.in", Password: "1234567890"}, true},
		{"with space", user.SetPassword{Email: "student3@getskill.in", Password: "Rohan Pillai 1!"}, true},
		{"bad email", user.SetPassword{Email: "student3", Password: "Tr1cky#Pass"}, true},
		{"valid", user.SetPassword{Email: "STUDENT3@getskill.in", Password: "Tr1cky#Pass"}, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.UserSvc.SetPassword(ctx, tc.data)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}

	_, err := env.UserSvc.Authenticate(ctx, "student3@getskill.in", "Tr1cky#Pass")
	assert.NoError(t, err)
	_, err = env.UserSvc.Authenticate(ctx, "student3@getskill.in", testutil.SeedPassword)
	assert.Equal(t, user.ErrInvalidCredentials, errors.Cause(err))

	_, err = env.UserSvc.SetPassword(ctx, user.SetPassword{Email: "ghost@getskill.in", Password: "Tr1cky#Pass"})
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}

func TestService_RequestPasswordReset(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	require.NoError(t, env.UserSvc.RequestPasswordReset(ctx, "student5@getskill.in"))
	sent := env.Mail.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Password Reset", sent[0].Subject)
	assert.Equal(t, "student5@getskill.in", sent[0].To[0].Address)

	err := env.UserSvc.RequestPasswordReset(ctx, "ghost@getskill.in")
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}

func TestService_Query(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()

	students, err := env.UserSvc.Query(ctx, user.QueryFilter{Roles: []string{user.RoleStudent}, CohortID: "cohort-2"})
	require.NoError(t, err)
	assert.Len(t, students, 8)

	staff, err := env.UserSvc.Query(ctx, user.QueryFilter{Roles: []string{user.RoleMentor, user.RoleAdmin}})
	require.NoError(t, err)
	assert.Len(t, staff, 7)

	found, err := env.UserSvc.Query(ctx, user.QueryFilter{Search: "diya"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "student-2", found[0].ID)
}
