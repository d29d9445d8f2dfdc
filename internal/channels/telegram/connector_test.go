package telegram

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/nexcrew/internal/config"
	"github.com/aatumaykin/nexcrew/internal/constants"
)

func textUpdate(chatID int64, text string) telego.Update {
	return telego.Update{
		Message: &telego.Message{
			MessageID: 1,
			From:      &telego.User{ID: chatID, FirstName: "Test"},
			Chat:      telego.Chat{ID: chatID, Type: "private"},
			Text:      text,
		},
	}
}

func enabledConfig() config.TelegramConfig {
	return config.TelegramConfig{
		Enabled:            true,
		Token:              "123456:ABCDEFGHIJKL",
		SendTimeoutSeconds: 5,
	}
}

func TestConnector_DisabledIsNoop(t *testing.T) {
	c := newTestConnector(config.TelegramConfig{})
	c.newBot = func(string) (BotInterface, error) {
		t.Fatal("bot must not be created when disabled")
		return nil, nil
	}

	require.NoError(t, c.Start(context.Background()))
	c.Stop()
}

func TestConnector_StartFailsOnBadBot(t *testing.T) {
	c := newTestConnector(enabledConfig())
	c.newBot = func(string) (BotInterface, error) { return nil, errors.New("invalid token") }

	err := c.Start(context.Background())
	assert.ErrorContains(t, err, "invalid token")

	bot := NewMockBotError(errors.New("unauthorized"))
	c.newBot = func(string) (BotInterface, error) { return bot, nil }
	assert.ErrorContains(t, c.Start(context.Background()), "unauthorized")
}

func TestConnector_SyncMenu(t *testing.T) {
	bot := NewMockBotWithUpdates()
	c := newTestConnector(enabledConfig())
	c.newBot = func(string) (BotInterface, error) { return bot, nil }

	require.NoError(t, c.Start(context.Background()))
	c.Stop()

	bot.AssertCalled(t, "SetMyCommands", mock.Anything, mock.MatchedBy(func(p *telego.SetMyCommandsParams) bool {
		var names []string
		for _, cmd := range p.Commands {
			names = append(names, cmd.Command)
		}
		return slices.Contains(names, "help") &&
			slices.Contains(names, "heartbeat") &&
			!slices.Contains(names, "start") &&
			!slices.Contains(names, "settings") &&
			!slices.Contains(names, "orchestrate")
	}))
}

func TestConnector_AnswersCommandsAndTracksChats(t *testing.T) {
	bot := NewMockBotWithUpdates(
		textUpdate(42, "/status"),
		textUpdate(42, "good morning"),
		textUpdate(7, "/help"),
		textUpdate(7, "hello"),
	)
	cfg := enabledConfig()
	cfg.AllowedChats = []string{"42"}
	c := newTestConnector(cfg)
	c.newBot = func(string) (BotInterface, error) { return bot, nil }

	require.NoError(t, c.Start(context.Background()))
	c.Stop()

	assert.Equal(t, "crew_bot", c.username)
	assert.Equal(t, []string{"42"}, c.Chats().ActiveChats())
	assert.Equal(t, []string{constants.MsgNoHeartbeats, constants.MsgNotAllowed}, bot.sentTexts())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

// NewMockBotError creates a MockBot on which every call fails with err.
func NewMockBotError(err error) *MockBot {
	m := new(MockBot)
	m.On("GetMe", mock.Anything).Return(nil, err).Maybe()
	m.On("SendMessage", mock.Anything, mock.Anything).Return(nil, err).Maybe()
	m.On("SetMyCommands", mock.Anything, mock.Anything).Return(err).Maybe()
	m.On("UpdatesViaLongPolling", mock.Anything, mock.Anything, mock.Anything).Return(nil, err).Maybe()
	return m
}
