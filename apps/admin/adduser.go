package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/user"
)

// addUser updates or creates an active user.User
func (cli *commandLine) addUser(name, email, role, cohortID, pwd string) (user.User, error) {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	role = core.CleanString(role, true /* lower */)
	cohortID = core.CleanString(cohortID)

	if !isRole(role) {
		return user.User{}, core.NewFieldError("role", "unknown role "+role)
	}
	if role == user.RoleStudent {
		if _, err := cli.catalogSvc.Cohort(ctx, cohortID); err != nil {
			return user.User{}, core.NewFieldError("cohort", "a student needs an existing cohort")
		}
	} else {
		cohortID = ""
	}

	var usr user.User
	err := cli.db.Do(ctx, func(ctx context.Context) error {
		var err error
		exists := true
		if usr, err = cli.usrRepo.GetUserByEmail(ctx, email); err != nil {
			if errors.Cause(err) != user.ErrNotFound {
				return err
			}
			exists = false
			usr = user.User{Email: email, CreatedAt: time.Now().UTC()}
		}
		usr.Name = name
		usr.Role = role
		usr.CohortID = cohortID
		usr.IsActive = true
		usr.UpdatedAt = time.Now().UTC()
		if err = usr.SetPassword(pwd); err != nil {
			return errors.Wrap(err, "hashing password")
		}

		if exists {
			usr, err = cli.usrRepo.UpdateUser(ctx, usr)
		} else {
			usr, err = cli.usrRepo.CreateUser(ctx, usr)
		}
		return err
	})
	return usr, err
}

func (cli *commandLine) setPassword(email, pwd string) error {
	_, err := cli.usrSvc.SetPassword(context.Background(), user.SetPassword{Email: email, Password: pwd})
	return err
}

func isRole(role string) bool {
	for _, r := range user.AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
