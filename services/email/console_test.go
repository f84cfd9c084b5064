package emailsvc

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/getskill/core"
	logsvc "github.com/trezcool/getskill/services/logger"
)

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	logger := logsvc.NewDiscardLogger()
	core.ParseEmailTemplates(logger, true)
	conf := core.NewTestConfig()
	svc := NewConsoleServiceMock(conf, logger)

	to := []mail.Address{{Name: "Ada", Address: "ada@getskill.in"}}
	svc.SendMessages(
		&core.EmailMessage{To: to, Subject: "plain", BodyStr: "hello"},
		&core.EmailMessage{
			To:           to,
			Subject:      "Changes Requested",
			TemplateName: "notification",
			TemplateData: struct {
				Name      string
				Title     string
				Message   string
				ActionURL string
			}{Name: "Ada", Title: "Changes Requested", Message: "Your mentor has requested changes", ActionURL: "/submissions/sub-1"},
		},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "dropped"},
		&core.EmailMessage{To: to, Subject: "unknown template", TemplateName: "nope"},
	)

	sent := svc.SentMessages()
	require.Len(t, sent, 2)
	assert.Equal(t, "hello", sent[0].TextContent)

	txt := sent[1].TextContent
	assert.True(t, strings.HasPrefix(txt, "Hi Ada,"))
	assert.Contains(t, txt, "Your mentor has requested changes")
	assert.Contains(t, txt, conf.FrontendBaseURL+"/submissions/sub-1")
	assert.NotEmpty(t, sent[1].HTMLContent)
}

func TestNew(t *testing.T) {
	logger := logsvc.NewDiscardLogger()
	conf := core.NewTestConfig()

	tests := []struct {
		backend string
		want    interface{}
	}{
		{backend: BackendConsole, want: &ConsoleService{}},
		{backend: "", want: &ConsoleService{}},
		{backend: BackendSendgrid, want: &sendgridService{}},
		{backend: BackendSMTP, want: &smtpService{}},
	}
	for _, tc := range tests {
		t.Run(tc.backend, func(t *testing.T) {
			conf.Mail.Backend = tc.backend
			assert.IsType(t, tc.want, New(conf, logger))
		})
	}
}
