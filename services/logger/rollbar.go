package logsvc

import (
	"io/ioutil"
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/user"
)

// RollbarLogger prints to a std logger and reports warnings and errors to Rollbar when enabled.
// Debug lines are printed only in debug mode.
type RollbarLogger struct {
	std   *log.Logger
	debug bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Address)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetCustom(map[string]interface{}{"app": conf.AppName, "storage": conf.Storage.Driver})
	return &RollbarLogger{std: std, debug: conf.Debug}
}

// NewDiscardLogger returns a logger that prints nothing and reports nothing; used in tests.
func NewDiscardLogger() *RollbarLogger {
	rollbar.SetEnabled(false)
	return &RollbarLogger{std: log.New(ioutil.Discard, "", 0)}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// report splits args for Rollbar: a user.User becomes the person (the first one wins) and its
// role and cohort are added to the item's custom data.
func (l RollbarLogger) report(level, msg string, args []interface{}) {
	var usr *user.User
	items := make([]interface{}, 0, len(args)+2)
	items = append(items, msg)
	for _, arg := range args {
		if u, ok := arg.(user.User); ok {
			if usr == nil {
				usr = &u
			}
			continue
		}
		items = append(items, arg)
	}

	if usr == nil {
		rollbar.ClearPerson()
	} else {
		rollbar.SetPerson(usr.ID, usr.Name, usr.Email)
		items = append(items, map[string]interface{}{"role": usr.Role, "cohort_id": usr.CohortID})
	}
	rollbar.Log(level, items...)
}

func (l RollbarLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("[%s] %s", level, msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		l.print(rollbar.DEBUG, msg, args)
	}
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.print(rollbar.INFO, msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.report(rollbar.WARN, msg, args)
	l.print(rollbar.WARN, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.report(rollbar.ERR, msg, args)
	l.print(rollbar.ERR, msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(rollbar.CRIT, msg, args)
	l.print(rollbar.CRIT, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
