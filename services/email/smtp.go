package emailsvc

import (
	"crypto/tls"
	"fmt"
	"net/mail"

	gomail "github.com/go-mail/mail/v2"

	"github.com/trezcool/getskill/core"
)

type smtpService struct {
	dialer          *gomail.Dialer
	from            mail.Address
	subjPrefix      string
	frontendBaseURL string
	logger          core.Logger
}

var _ core.EmailService = (*smtpService)(nil)

// NewSMTPService sends through an SMTP relay, requiring STARTTLS.
func NewSMTPService(conf *core.Config, logger core.Logger) core.EmailService {
	d := gomail.NewDialer(conf.Mail.SMTPHost, conf.Mail.SMTPPort, conf.Mail.SMTPUser, conf.Mail.SMTPPassword)
	d.StartTLSPolicy = gomail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         conf.Mail.SMTPHost,
		InsecureSkipVerify: conf.Mail.SkipTLSVerify, // nolint:gosec
	}
	return &smtpService{
		dialer:          d,
		from:            conf.DefaultFromEmail(),
		subjPrefix:      "[" + conf.AppName + "] ",
		frontendBaseURL: conf.FrontendBaseURL,
		logger:          logger,
	}
}

func (svc smtpService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if err := msg.Render(svc.frontendBaseURL); err != nil {
				svc.logger.Error(fmt.Sprintf("rendering email: %v", err), err)
				return
			}
			if msg.HasRecipients() && msg.HasContent() {
				if err := svc.dialer.DialAndSend(svc.prepare(*msg)); err != nil {
					svc.logger.Error(fmt.Sprintf("sending email: %v", err), err)
				}
			}
		}()
	}
}

func (svc smtpService) prepare(msg core.EmailMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", svc.from.Address, svc.from.Name)
	m.SetHeader("To", addressList(m, msg.To)...)
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", addressList(m, msg.Cc)...)
	}
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", addressList(m, msg.Bcc)...)
	}
	m.SetHeader("Subject", svc.subjPrefix+msg.Subject)

	m.SetBody("text/plain", msg.TextContent)
	if msg.HTMLContent != "" {
		m.AddAlternative("text/html", msg.HTMLContent)
	}
	return m
}

func addressList(m *gomail.Message, addrs []mail.Address) []string {
	list := make([]string, 0, len(addrs))
	for _, a := range addrs {
		list = append(list, m.FormatAddress(a.Address, a.Name))
	}
	return list
}
