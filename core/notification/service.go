package notification

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/user"
)

var ErrNotFound = errors.New("notification not found")

type (
	Repository interface {
		// AddNotification stores n ahead of the existing ones: listings are newest first.
		AddNotification(ctx context.Context, n Notification) (Notification, error)
		GetNotification(ctx context.Context, id string) (Notification, error)
		UpdateNotification(ctx context.Context, n Notification) (Notification, error)
		QueryNotifications(ctx context.Context, filter QueryFilter) ([]Notification, error)
	}

	Service interface {
		// Queue stores a notification inside the caller's unit of work. Nothing is emailed;
		// pass the result to Deliver once the unit of work has committed.
		Queue(ctx context.Context, nn NewNotification) (Notification, error)
		// Deliver mirrors stored notifications to the recipients' mailboxes.
		Deliver(ctx context.Context, notifications ...Notification)
		// Notify is Queue and Deliver in its own unit of work.
		Notify(ctx context.Context, nn NewNotification) (Notification, error)
		MarkRead(ctx context.Context, userID, id string) (Notification, error)
		MarkAllRead(ctx context.Context, userID string) (int, error)
		Query(ctx context.Context, filter QueryFilter) ([]Notification, error)
		UnreadCount(ctx context.Context, userID string) (int, error)
	}

	service struct {
		repo     Repository
		usrRepo  user.Repository
		uow      core.UnitOfWork
		mailSvc  core.EmailService
		validate *validator.Validate
		logger   core.Logger
	}
)

var (
	_ Service = (*service)(nil)

	nowFunc = time.Now // mockable
)

func NewService(
	repo Repository,
	usrRepo user.Repository,
	uow core.UnitOfWork,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
) Service {
	return &service{
		repo:     repo,
		usrRepo:  usrRepo,
		uow:      uow,
		mailSvc:  mailSvc,
		validate: validate,
		logger:   logger,
	}
}

func (svc *service) Queue(ctx context.Context, nn NewNotification) (Notification, error) {
	if err := nn.Validate(svc.validate); err != nil {
		return Notification{}, err
	}
	n := Notification{
		ID:        uuid.New().String(),
		UserID:    nn.UserID,
		Type:      nn.Type,
		Title:     nn.Title,
		Message:   nn.Message,
		ActionURL: nn.ActionURL,
		CreatedAt: nowFunc().UTC(),
	}
	n, err := svc.repo.AddNotification(ctx, n)
	return n, errors.Wrap(err, "adding notification")
}

func (svc *service) Deliver(ctx context.Context, notifications ...Notification) {
	messages := make([]*core.EmailMessage, 0, len(notifications))
	for _, n := range notifications {
		usr, err := svc.usrRepo.GetUser(ctx, n.UserID)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("notification %s: recipient %s: %v", n.ID, n.UserID, err))
			continue
		}
		if usr.Email == "" || !usr.IsActive {
			continue
		}
		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject:      n.Title,
			TemplateName: "notification",
			TemplateData: struct {
				Name      string
				Title     string
				Message   string
				ActionURL string
			}{Name: usr.Name, Title: n.Title, Message: n.Message, ActionURL: n.ActionURL},
		})
	}
	if len(messages) > 0 {
		svc.mailSvc.SendMessages(messages...)
	}
}

func (svc *service) Notify(ctx context.Context, nn NewNotification) (Notification, error) {
	var n Notification
	err := svc.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		n, err = svc.Queue(ctx, nn)
		return err
	})
	if err != nil {
		return Notification{}, err
	}
	svc.Deliver(ctx, n)
	return n, nil
}

// MarkRead marks one of the user's notifications as read. Notifications of other users are not found.
func (svc *service) MarkRead(ctx context.Context, userID, id string) (Notification, error) {
	var n Notification
	err := svc.uow.Do(ctx, func(ctx context.Context) error {
		var err error
		if n, err = svc.repo.GetNotification(ctx, core.CleanString(id)); err != nil {
			return err
		}
		if n.UserID != userID {
			return ErrNotFound
		}
		if n.Read {
			return nil
		}
		n.Read = true
		n, err = svc.repo.UpdateNotification(ctx, n)
		return err
	})
	return n, err
}

func (svc *service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	var count int
	err := svc.uow.Do(ctx, func(ctx context.Context) error {
		unread, err := svc.repo.QueryNotifications(ctx, QueryFilter{UserID: userID, UnreadOnly: true})
		if err != nil {
			return err
		}
		for _, n := range unread {
			n.Read = true
			if _, err = svc.repo.UpdateNotification(ctx, n); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	return count, err
}

func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]Notification, error) {
	filter.UserID = core.CleanString(filter.UserID)
	return svc.repo.QueryNotifications(ctx, filter)
}

func (svc *service) UnreadCount(ctx context.Context, userID string) (int, error) {
	unread, err := svc.repo.QueryNotifications(ctx, QueryFilter{UserID: userID, UnreadOnly: true})
	return len(unread), err
}
