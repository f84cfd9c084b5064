package dummydb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) index(id string) int {
	for i, u := range repo.db.rows {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (repo *userRepository) emailTaken(email, excludedID string) bool {
	for _, u := range repo.db.rows {
		if u.ID != excludedID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.emailTaken(usr.Email, "") {
		return user.User{}, user.ErrEmailExists
	}
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	repo.db.rows = append(repo.db.rows, usr)
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if i := repo.index(id); i >= 0 {
		return repo.db.rows[i], nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.rows {
		if strings.EqualFold(usr.Email, email) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter user.QueryFilter, orderings ...core.DBOrdering) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	search := strings.ToLower(filter.Search)
	users := make([]user.User, 0)
	for _, u := range repo.db.rows {
		// users with search keyword matching any Name or Email ?
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		// users with any of the specified roles
		if len(filter.Roles) > 0 && !hasString(filter.Roles, u.Role) {
			continue
		}
		if filter.CohortID != "" && u.CohortID != filter.CohortID {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		users = append(users, u)
	}

	core.SortByOrderings(users, orderings, func(field string, i, j int) (int, bool) {
		switch field {
		case "name":
			return strings.Compare(strings.ToLower(users[i].Name), strings.ToLower(users[j].Name)), true
		case "email":
			return strings.Compare(users[i].Email, users[j].Email), true
		case "role":
			return strings.Compare(users[i].Role, users[j].Role), true
		case "created_at":
			return compareTimes(users[i].CreatedAt, users[j].CreatedAt), true
		case "last_login":
			return compareTimes(users[i].LastLogin, users[j].LastLogin), true
		}
		return 0, false
	}, noReorder)
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := repo.index(usr.ID)
	if i < 0 {
		return user.User{}, user.ErrNotFound
	}
	if repo.emailTaken(usr.Email, usr.ID) {
		return user.User{}, user.ErrEmailExists
	}
	if usr.PasswordHash == nil {
		usr.PasswordHash = repo.db.rows[i].PasswordHash
	}
	repo.db.rows[i] = usr
	return usr, nil
}
