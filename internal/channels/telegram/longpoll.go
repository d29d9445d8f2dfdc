package telegram

import (
	"context"

	"github.com/mymmrac/telego"

	"github.com/aatumaykin/nexcrew/internal/constants"
	"github.com/aatumaykin/nexcrew/internal/logger"
)

func (c *Connector) poll(ctx context.Context, updates <-chan telego.Update) {
	defer c.wg.Done()
	c.logger.Info("long polling started")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("long polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				c.logger.Info("updates channel closed")
				return
			}
			c.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate tracks the chat of every text message and answers commands.
func (c *Connector) handleUpdate(ctx context.Context, update telego.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	chatID := msg.Chat.ID
	log := c.logger.With(logger.Field{Key: "chat_id", Value: chatID})

	if !c.chats.Track(chatID) {
		log.WarnCtx(ctx, "message blocked - chat not in allow list")
		if _, _, isCmd := parseCommand(msg.Text, c.username); isCmd {
			c.reply(ctx, chatID, constants.MsgNotAllowed)
		}
		return
	}

	text, handled := c.dispatch(ctx, msg.Text)
	if !handled {
		log.DebugCtx(ctx, "ignoring non-command message")
		return
	}

	log.DebugCtx(ctx, "command handled", logger.Field{Key: "text", Value: msg.Text})
	c.reply(ctx, chatID, text)
}
