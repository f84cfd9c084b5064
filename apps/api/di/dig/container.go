package dig_container

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/getskill/apps/api/echo"
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

type StoreLoggerParam struct {
	dig.In
	Logger core.Logger `name:"storeLogger"`
}

// ServerParam gathers what the API server needs.
type ServerParam struct {
	dig.In
	Conf            *core.Config
	Logger          core.Logger
	Validate        *validator.Validate
	Translator      ut.Translator
	UserSvc         user.Service
	TaskSvc         task.Service
	CatalogSvc      catalog.Service
	ReviewSvc       review.Service
	NotificationSvc notification.Service
	AttendanceSvc   attendance.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newStoreLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "STORE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam StoreLoggerParam) (*dummydb.DB, core.UnitOfWork) {
	logger := loggerParam.Logger
	store, err := snapshot.Open(conf)
	if err != nil {
		logger.Fatal("opening snapshot store", err)
	}
	db, err := dummydb.Open(store, logger)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	return db, db
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

// The attendance service reads grades from reviews and completion from tasks.
func newAttendanceService(
	conf *core.Config,
	repo attendance.Repository,
	users user.Repository,
	catalogSvc catalog.Service,
	reviewSvc review.Service,
	taskSvc task.Service,
	uow core.UnitOfWork,
	validate *validator.Validate,
) attendance.Service {
	return attendance.NewService(conf, repo, users, catalogSvc, reviewSvc, taskSvc, uow, validate)
}

func newServer(p ServerParam) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:            p.Conf,
		Logger:          p.Logger,
		Validate:        p.Validate,
		Translator:      p.Translator,
		UserSvc:         p.UserSvc,
		TaskSvc:         p.TaskSvc,
		CatalogSvc:      p.CatalogSvc,
		ReviewSvc:       p.ReviewSvc,
		NotificationSvc: p.NotificationSvc,
		AttendanceSvc:   p.AttendanceSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newStoreLogger, dig.Name("storeLogger")))
	must(c.Provide(newDB))
	must(c.Provide(emailsvc.New))
	must(c.Provide(newTranslator))
	must(c.Provide(newValidator))

	must(c.Provide(dummydb.NewUserRepository))
	must(c.Provide(dummydb.NewTaskRepository))
	must(c.Provide(dummydb.NewCatalogRepository))
	must(c.Provide(dummydb.NewNotificationRepository))
	must(c.Provide(dummydb.NewReviewRepository))
	must(c.Provide(dummydb.NewAttendanceRepository))

	must(c.Provide(user.NewService))
	must(c.Provide(task.NewService))
	must(c.Provide(catalog.NewService))
	must(c.Provide(notification.NewService))
	must(c.Provide(review.NewService))
	must(c.Provide(newAttendanceService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
