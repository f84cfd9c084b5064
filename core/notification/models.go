package notification

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/getskill/core"
)

// Types
const (
	TypeInfo    = "info"
	TypeSuccess = "success"
	TypeWarning = "warning"
	TypeError   = "error"
)

type Notification struct {
	ID        string    `json:"id" yaml:"id"`
	UserID    string    `json:"user_id" yaml:"userId"`
	Type      string    `json:"type" yaml:"type"`
	Title     string    `json:"title" yaml:"title"`
	Message   string    `json:"message" yaml:"message"`
	Read      bool      `json:"read" yaml:"read"`
	ActionURL string    `json:"action_url,omitempty" yaml:"actionUrl"`
	CreatedAt time.Time `json:"created_at" yaml:"createdAt"`
}

// NewNotification contains information needed to create a new Notification.
type NewNotification struct {
	UserID    string `json:"user_id" validate:"required"`
	Type      string `json:"type" validate:"required,oneof=info success warning error"`
	Title     string `json:"title" validate:"required,notblank"`
	Message   string `json:"message" validate:"required,notblank"`
	ActionURL string `json:"action_url"`
}

func (nn *NewNotification) Validate(validate *validator.Validate) error {
	nn.UserID = core.CleanString(nn.UserID)
	nn.Type = core.CleanString(nn.Type, true /* lower */)
	nn.Title = core.CleanString(nn.Title)
	nn.Message = core.CleanString(nn.Message)
	nn.ActionURL = core.CleanString(nn.ActionURL)
	return validate.Struct(nn)
}

type QueryFilter struct {
	UserID     string `query:"-"`
	UnreadOnly bool   `query:"unread"`
}
