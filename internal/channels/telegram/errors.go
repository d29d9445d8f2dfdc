package telegram

import (
	"errors"
	"fmt"

	"github.com/mymmrac/telego/telegoapi"

	"github.com/aatumaykin/nexcrew/internal/logger"
)

// ErrNotStarted is returned by Sender before the connector has a bot.
var ErrNotStarted = errors.New("telegram connector is not started")

// APIError is a Bot API failure for one chat.
type APIError struct {
	ErrorCode   int
	Description string
	ChatID      int64
	err         error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api error %d for chat %d: %s", e.ErrorCode, e.ChatID, e.Description)
}

func (e *APIError) Unwrap() error {
	return e.err
}

// IsRetryable reports whether the same request may succeed later: rate
// limiting and server-side failures.
func (e *APIError) IsRetryable() bool {
	return e.ErrorCode == 429 || (e.ErrorCode >= 500 && e.ErrorCode < 600)
}

// LogFields returns the fields for structured logging.
func (e *APIError) LogFields() []logger.Field {
	return []logger.Field{
		{Key: "error_code", Value: e.ErrorCode},
		{Key: "error_description", Value: e.Description},
		{Key: "retryable", Value: e.IsRetryable()},
		{Key: "chat_id", Value: e.ChatID},
	}
}

// wrapAPIError turns a telego API error into an APIError. Other errors are
// returned unchanged.
func wrapAPIError(err error, chatID int64) error {
	var apiErr *telegoapi.Error
	if errors.As(err, &apiErr) {
		return &APIError{
			ErrorCode:   apiErr.ErrorCode,
			Description: apiErr.Description,
			ChatID:      chatID,
			err:         err,
		}
	}
	return err
}
