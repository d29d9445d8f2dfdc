package telegram

import (
	"context"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/mock"
)

// MockBot records BotInterface calls with testify/mock.
type MockBot struct {
	mock.Mock
}

func (m *MockBot) GetMe(ctx context.Context) (*telego.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*telego.User), args.Error(1)
}

func (m *MockBot) SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*telego.Message), args.Error(1)
}

func (m *MockBot) SetMyCommands(ctx context.Context, params *telego.SetMyCommandsParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockBot) UpdatesViaLongPolling(ctx context.Context, params *telego.GetUpdatesParams, opts ...telego.LongPollingOption) (<-chan telego.Update, error) {
	args := m.Called(ctx, params, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(chan telego.Update), args.Error(1)
}

// sentTexts returns the text of every SendMessage call in order.
func (m *MockBot) sentTexts() []string {
	var out []string
	for _, call := range m.Calls {
		if call.Method == "SendMessage" {
			out = append(out, call.Arguments.Get(1).(*telego.SendMessageParams).Text)
		}
	}
	return out
}

// NewMockBotSuccess creates a MockBot on which every call succeeds. All
// expectations are optional.
func NewMockBotSuccess() *MockBot {
	m := new(MockBot)

	m.On("GetMe", mock.Anything).Return(&telego.User{
		ID:        123456789,
		FirstName: "Test",
		Username:  "crew_bot",
	}, nil).Maybe()
	m.On("SendMessage", mock.Anything, mock.Anything).Return(&telego.Message{MessageID: 1}, nil).Maybe()
	m.On("SetMyCommands", mock.Anything, mock.Anything).Return(nil).Maybe()

	return m
}

// NewMockBotWithUpdates creates a successful MockBot whose long poll yields
// updates and then closes.
func NewMockBotWithUpdates(updates ...telego.Update) *MockBot {
	m := NewMockBotSuccess()

	ch := make(chan telego.Update, len(updates))
	for _, u := range updates {
		ch <- u
	}
	close(ch)

	m.On("UpdatesViaLongPolling", mock.Anything, mock.Anything, mock.Anything).Return(ch, nil)
	return m
}
