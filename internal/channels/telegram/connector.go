// Package telegram connects the crew to a Telegram bot: it delivers
// heartbeat results, tracks the chats that talk to the bot and answers the
// commands the catalog exposes on the telegram interface.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mymmrac/telego"

	"github.com/aatumaykin/nexcrew/internal/commands"
	"github.com/aatumaykin/nexcrew/internal/config"
	"github.com/aatumaykin/nexcrew/internal/heartbeat"
	"github.com/aatumaykin/nexcrew/internal/logger"
)

// maxCommandDescription is the Bot API limit for menu descriptions.
const maxCommandDescription = 256

// Connector represents the Telegram bot connector
type Connector struct {
	cfg        config.TelegramConfig
	logger     *logger.Logger
	policy     *commands.Policy
	help       *commands.Help
	sender     *Sender
	chats      *ChatTracker
	heartbeats Heartbeats
	worklogs   Worklogs
	newBot     func(token string) (BotInterface, error)

	bot      BotInterface
	username string
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a connector. Nothing talks to Telegram until Start.
func New(cfg config.TelegramConfig, policy *commands.Policy, log *logger.Logger) *Connector {
	if log == nil {
		log = logger.Discard()
	}
	log = log.Named("telegram")
	return &Connector{
		cfg:    cfg,
		logger: log,
		policy: policy,
		help:   commands.NewHelp(policy),
		sender: NewSender(time.Duration(cfg.SendTimeoutSeconds)*time.Second, cfg.QuietMode, log),
		chats:  NewChatTracker(cfg.AllowedChats),
		newBot: func(token string) (BotInterface, error) {
			bot, err := telego.NewBot(token)
			if err != nil {
				return nil, err
			}
			return NewBotAdapter(bot), nil
		},
	}
}

// SetHeartbeats attaches the scheduler used by /status and /heartbeat.
func (c *Connector) SetHeartbeats(h Heartbeats) {
	c.heartbeats = h
}

// SetWorklogs attaches the store used by /worklog.
func (c *Connector) SetWorklogs(w Worklogs) {
	c.worklogs = w
}

// Sender returns the heartbeat delivery sender backed by this bot.
func (c *Connector) Sender() *Sender {
	return c.sender
}

// Chats returns the tracker of chats seen by this bot.
func (c *Connector) Chats() *ChatTracker {
	return c.chats
}

// Start initializes the bot, publishes the command menu and starts long
// polling. It is a no-op when the connector is disabled.
func (c *Connector) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.logger.Info("telegram connector disabled in config")
		return nil
	}
	if c.cfg.Token == "" {
		return errors.New("telegram token is required")
	}

	bot, err := c.newBot(c.cfg.Token)
	if err != nil {
		return fmt.Errorf("failed to initialize telegram bot: %w", err)
	}

	me, err := bot.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}
	c.bot = bot
	c.username = me.Username
	c.sender.SetBot(bot)

	c.logger.Info("telegram bot initialized",
		logger.Field{Key: "bot_id", Value: me.ID},
		logger.Field{Key: "username", Value: me.Username})

	if err := c.SyncMenu(ctx); err != nil {
		c.logger.ErrorCtx(ctx, "failed to register bot commands", err)
	}

	pollCtx, cancel := context.WithCancel(ctx)
	updates, err := bot.UpdatesViaLongPolling(pollCtx, &telego.GetUpdatesParams{Timeout: 30})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to start long polling: %w", err)
	}
	c.cancel = cancel

	c.wg.Add(1)
	go c.poll(pollCtx, updates)

	return nil
}

// Stop ends long polling and waits for the update loop to exit.
func (c *Connector) Stop() {
	if c.cancel == nil {
		return
	}
	c.logger.Info("stopping telegram connector")
	c.cancel()
	c.wg.Wait()
	c.cancel = nil
	c.sender.SetBot(nil)
}

// SyncMenu publishes the telegram menu: executable commands minus the names
// Telegram reserves for itself.
func (c *Connector) SyncMenu(ctx context.Context) error {
	if c.bot == nil {
		return ErrNotStarted
	}

	var cmds []telego.BotCommand
	for _, e := range c.policy.Menu(commands.Telegram) {
		cmds = append(cmds, telego.BotCommand{
			Command:     e.Descriptor.Name,
			Description: truncate(e.Descriptor.Description, maxCommandDescription),
		})
	}

	if err := c.bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: cmds}); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	c.logger.Info("bot commands registered", logger.Field{Key: "count", Value: len(cmds)})
	return nil
}

// reply sends text to one chat using the same rich-then-plain fallback as
// heartbeat delivery.
func (c *Connector) reply(ctx context.Context, chatID int64, text string) {
	d := heartbeat.NewDelivery(c.sender, nil, []string{strconv.FormatInt(chatID, 10)}, c.logger)
	if _, err := d.Deliver(ctx, text); err != nil {
		c.logger.ErrorCtx(ctx, "failed to send reply", err, logger.Field{Key: "chat_id", Value: chatID})
	}
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-1]) + "…"
}
