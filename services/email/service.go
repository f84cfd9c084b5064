package emailsvc

import (
	"github.com/trezcool/getskill/core"
)

// Mail back ends
const (
	BackendConsole  = "console"
	BackendSendgrid = "sendgrid"
	BackendSMTP     = "smtp"
)

// New returns the email service selected by conf.Mail.Backend, the console one by default.
func New(conf *core.Config, logger core.Logger) core.EmailService {
	switch conf.Mail.Backend {
	case BackendSendgrid:
		return NewSendgridService(conf, logger)
	case BackendSMTP:
		return NewSMTPService(conf, logger)
	default:
		if conf.TestMode {
			return NewConsoleServiceMock(conf, logger)
		}
		return NewConsoleService(conf, logger)
	}
}
