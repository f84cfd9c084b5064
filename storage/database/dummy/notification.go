package dummydb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) index(id string) int {
	for i, n := range repo.db.rows {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (repo *notificationRepository) AddNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.index(n.ID) >= 0 {
		return notification.Notification{}, errors.Errorf("notification %s already exists", n.ID)
	}
	repo.db.rows = append([]notification.Notification{n}, repo.db.rows...)
	return n, nil
}

func (repo *notificationRepository) GetNotification(_ context.Context, id string) (notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if i := repo.index(id); i >= 0 {
		return repo.db.rows[i], nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) UpdateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := repo.index(n.ID)
	if i < 0 {
		return notification.Notification{}, notification.ErrNotFound
	}
	repo.db.rows[i] = n
	return n, nil
}

func (repo *notificationRepository) QueryNotifications(_ context.Context, filter notification.QueryFilter) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notifs := make([]notification.Notification, 0)
	for _, n := range repo.db.rows {
		if filter.UserID != "" && n.UserID != filter.UserID {
			continue
		}
		if filter.UnreadOnly && n.Read {
			continue
		}
		notifs = append(notifs, n)
	}
	return notifs, nil
}
