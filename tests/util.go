package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/attendance"
	"github.com/trezcool/getskill/core/catalog"
	"github.com/trezcool/getskill/core/notification"
	"github.com/trezcool/getskill/core/review"
	"github.com/trezcool/getskill/core/task"
	"github.com/trezcool/getskill/core/user"
	emailsvc "github.com/trezcool/getskill/services/email"
	logsvc "github.com/trezcool/getskill/services/logger"
	dummydb "github.com/trezcool/getskill/storage/database/dummy"
	"github.com/trezcool/getskill/storage/snapshot"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "Getskill@2024"

// Env wires every service on a fresh seeded in-memory database.
type Env struct {
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Store      *snapshot.MemStore
	DB         *dummydb.DB
	Mail       *emailsvc.ConsoleService

	UserRepo         user.Repository
	TaskRepo         task.Repository
	CatalogRepo      catalog.Repository
	NotificationRepo notification.Repository
	ReviewRepo       review.Repository
	AttendanceRepo   attendance.Repository

	UserSvc         user.Service
	TaskSvc         task.Service
	CatalogSvc      catalog.Service
	NotificationSvc notification.Service
	ReviewSvc       review.Service
	AttendanceSvc   attendance.Service
}

func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// NewValidator returns a validator with every custom tag and translation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func NewLogger() core.Logger {
	return logsvc.NewDiscardLogger()
}

// NewEnv opens a seeded database on a memory store and wires the services on it.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	conf := core.NewTestConfig()
	logger := NewLogger()
	core.ParseEmailTemplates(logger, true)
	user.LoadCommonPasswords(logger)
	validate, translator := NewValidator()

	store := snapshot.NewMemStore()
	db, err := dummydb.Open(store, logger)
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}

	e := &Env{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		Store:      store,
		DB:         db,
		Mail:       emailsvc.NewConsoleServiceMock(conf, logger),

		UserRepo:         dummydb.NewUserRepository(db),
		TaskRepo:         dummydb.NewTaskRepository(db),
		CatalogRepo:      dummydb.NewCatalogRepository(db),
		NotificationRepo: dummydb.NewNotificationRepository(db),
		ReviewRepo:       dummydb.NewReviewRepository(db),
		AttendanceRepo:   dummydb.NewAttendanceRepository(db),
	}
	e.UserSvc = user.NewService(conf, e.UserRepo, db, e.Mail, validate)
	e.TaskSvc = task.NewService(e.TaskRepo, db, validate)
	e.CatalogSvc = catalog.NewService(e.CatalogRepo)
	e.NotificationSvc = notification.NewService(e.NotificationRepo, e.UserRepo, db, e.Mail, validate, logger)
	e.ReviewSvc = review.NewService(conf, e.ReviewRepo, e.TaskRepo, e.CatalogRepo, e.UserRepo, e.NotificationSvc, db, validate, logger)
	e.AttendanceSvc = attendance.NewService(conf, e.AttendanceRepo, e.UserRepo, e.CatalogSvc, e.ReviewSvc, e.TaskSvc, db, validate)
	return e
}

// User returns a seeded user.
func (e *Env) User(t *testing.T, id string) user.User {
	t.Helper()
	usr, err := e.UserRepo.GetUser(context.Background(), id)
	if err != nil {
		t.Fatalf("GetUser(%s) failed: %v", id, err)
	}
	return usr
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role, cohortID string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CohortID:  cohortID,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}
