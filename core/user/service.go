package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name or User.Email.
		QueryUsers(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service interface {
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Query(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]User, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		SetPassword(ctx context.Context, data SetPassword) (User, error)
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, data ResetUserPassword) error
	}

	service struct {
		repo     Repository
		uow      core.UnitOfWork
		mailSvc  core.EmailService
		validate *validator.Validate
		tokenGen tokenGenerator
	}
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
)

var _ Service = (*service)(nil)

func NewService(
	conf *core.Config,
	repo Repository,
	uow core.UnitOfWork,
	mailSvc core.EmailService,
	validate *validator.Validate,
) Service {
	return &service{
		repo:     repo,
		uow:      uow,
		mailSvc:  mailSvc,
		validate: validate,
		tokenGen: tokenGenerator{secretKey: []byte(conf.SecretKey), timeout: conf.PasswordResetTimeoutDelta},
	}
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, core.CleanString(id))
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) Query(ctx context.Context, filter QueryFilter, orderings ...core.DBOrdering) ([]User, error) {
	filter.Clean()
	return svc.repo.QueryUsers(ctx, filter, orderings...)
}

// Authenticate checks the credentials and records the login time.
func (svc *service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	var usr User
	err := svc.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		usr, err = svc.GetByEmail(ctx, email)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return ErrInvalidCredentials
			}
			return errors.Wrap(err, "finding user by email")
		}
		if err = usr.CheckPassword(pwd); err != nil {
			return ErrInvalidCredentials
		}
		if !usr.IsActive {
			return ErrAccountDeactivated
		}
		usr.LastLogin = time.Now().UTC()
		usr, err = svc.repo.UpdateUser(ctx, usr)
		return errors.Wrap(err, "setting last login")
	})
	return usr, err
}

func (svc *service) checkPassword(pwd string, usr User) error {
	return svc.validate.Struct(passwordCheck{Password: pwd, Name: usr.Name, Email: usr.Email})
}

func (svc *service) SetPassword(ctx context.Context, data SetPassword) (User, error) {
	if err := data.Validate(svc.validate); err != nil {
		return User{}, err
	}

	var usr User
	err := svc.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		if usr, err = svc.GetByEmail(ctx, data.Email); err != nil {
			return err
		}
		if err = svc.checkPassword(data.Password, usr); err != nil {
			return err
		}
		if err = usr.SetPassword(data.Password); err != nil {
			return errors.Wrap(err, "hashing password")
		}
		usr.UpdatedAt = time.Now().UTC()
		usr, err = svc.repo.UpdateUser(ctx, usr)
		return err
	})
	return usr, err
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: struct {
			Name  string
			UID   string
			Token string
		}{Name: usr.Name, UID: encodeUID(usr), Token: svc.tokenGen.makeToken(usr)},
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}

func (svc *service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	if err := data.Validate(svc.validate); err != nil {
		return err
	}
	invalidErr := core.NewValidationError(fmt.Errorf("invalid password reset link"))

	id, err := decodeUID(strings.TrimSpace(data.UID))
	if err != nil {
		return invalidErr
	}
	return svc.uow.Do(ctx, func(ctx context.Context) error {
		usr, err := svc.repo.GetUser(ctx, id)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return invalidErr
			}
			return err
		}
		if err = svc.tokenGen.verifyToken(usr, data.Token); err != nil {
			return invalidErr
		}
		if err = svc.checkPassword(data.Password, usr); err != nil {
			return err
		}
		if err = usr.SetPassword(data.Password); err != nil {
			return errors.Wrap(err, "hashing password")
		}
		usr.UpdatedAt = time.Now().UTC()
		_, err = svc.repo.UpdateUser(ctx, usr)
		return err
	})
}
