package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mymmrac/telego"

	"github.com/aatumaykin/nexcrew/internal/logger"
	"github.com/aatumaykin/nexcrew/internal/markdown"
)

// Sender sends one message per call. It implements heartbeat.Sender.
type Sender struct {
	timeout time.Duration
	quiet   bool
	logger  *logger.Logger

	mu  sync.RWMutex
	bot BotInterface
}

// NewSender creates a sender. It fails with ErrNotStarted until SetBot is
// called.
func NewSender(timeout time.Duration, quiet bool, log *logger.Logger) *Sender {
	if log == nil {
		log = logger.Discard()
	}
	return &Sender{timeout: timeout, quiet: quiet, logger: log}
}

// SetBot attaches the bot used for sending. nil detaches it.
func (s *Sender) SetBot(bot BotInterface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bot = bot
}

// Send delivers text to recipient. HTML text is sent with the HTML parse
// mode; plain text with none.
func (s *Sender) Send(ctx context.Context, recipient, text string, format markdown.Format) error {
	s.mu.RLock()
	bot := s.bot
	s.mu.RUnlock()
	if bot == nil {
		return ErrNotStarted
	}

	chatID, err := ParseChatID(recipient)
	if err != nil {
		return err
	}

	params := &telego.SendMessageParams{
		ChatID:              chatID,
		Text:                text,
		DisableNotification: s.quiet,
	}
	if format == markdown.HTML {
		params.ParseMode = telego.ModeHTML
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if _, err := bot.SendMessage(ctx, params); err != nil {
		err = wrapAPIError(err, chatID.ID)
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			s.logger.WarnCtx(ctx, "telegram rejected message", apiErr.LogFields()...)
		}
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// ParseChatID accepts a numeric chat id or an @channel username.
func ParseChatID(recipient string) (telego.ChatID, error) {
	recipient = strings.TrimSpace(recipient)
	if strings.HasPrefix(recipient, "@") && len(recipient) > 1 {
		return telego.ChatID{Username: recipient}, nil
	}

	id, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil {
		return telego.ChatID{}, fmt.Errorf("invalid chat id %q: %w", recipient, err)
	}
	return telego.ChatID{ID: id}, nil
}
