package heartbeat

import (
	"context"
	"errors"
	"fmt"

	"github.com/aatumaykin/nexcrew/internal/constants"
	"github.com/aatumaykin/nexcrew/internal/logger"
	"github.com/aatumaykin/nexcrew/internal/markdown"
	"github.com/aatumaykin/nexcrew/internal/metrics"
)

// Sender delivers one chunk to one recipient.
type Sender interface {
	Send(ctx context.Context, recipient, text string, format markdown.Format) error
}

// ChatSource lists chats seen recently.
type ChatSource interface {
	ActiveChats() []string
}

// Delivery sends agent results to chat recipients.
type Delivery struct {
	sender     Sender
	chats      ChatSource
	recipients []string
	limit      int
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

// NewDelivery creates a delivery. recipients overrides chats when non-empty.
func NewDelivery(sender Sender, chats ChatSource, recipients []string, log *logger.Logger) *Delivery {
	if log == nil {
		log = logger.Discard()
	}
	return &Delivery{
		sender:     sender,
		chats:      chats,
		recipients: recipients,
		limit:      constants.TelegramMessageLimit,
		logger:     log.Named("delivery"),
	}
}

// SetMetrics attaches collectors.
func (d *Delivery) SetMetrics(m *metrics.Metrics) {
	d.metrics = m
}

// Recipients returns the configured allow-list, or the active chats when the
// list is empty.
func (d *Delivery) Recipients() []string {
	if len(d.recipients) > 0 {
		return d.recipients
	}
	if d.chats == nil {
		return nil
	}
	return d.chats.ActiveChats()
}

// Deliver sends text to every recipient. Each chunk goes out as HTML; a
// chunk that fails is retried once as plain text. It reports whether every
// chunk reached every recipient and joins the errors of chunks that did not.
func (d *Delivery) Deliver(ctx context.Context, text string) (bool, error) {
	recipients := d.Recipients()
	if len(recipients) == 0 {
		d.logger.WarnCtx(ctx, "no recipients for heartbeat result")
		return false, nil
	}

	chunks := markdown.Split(text, d.limit)
	if len(chunks) == 0 {
		return false, nil
	}

	var errs []error
	for _, recipient := range recipients {
		for i, chunk := range chunks {
			if err := d.sendChunk(ctx, recipient, chunk); err != nil {
				d.logger.ErrorCtx(ctx, constants.MsgPartialDelivery, err,
					logger.Field{Key: "recipient", Value: recipient},
					logger.Field{Key: "chunk", Value: i + 1},
					logger.Field{Key: "chunks", Value: len(chunks)})
				errs = append(errs, fmt.Errorf("recipient %s chunk %d/%d: %w", recipient, i+1, len(chunks), err))
			}
		}
	}

	return len(errs) == 0, errors.Join(errs...)
}

func (d *Delivery) sendChunk(ctx context.Context, recipient, chunk string) error {
	richErr := d.sender.Send(ctx, recipient, markdown.ToHTML(chunk), markdown.HTML)
	if richErr == nil {
		d.metrics.RecordDelivery("rich")
		return nil
	}

	d.logger.WarnCtx(ctx, "rich send failed, retrying as plain text",
		logger.Field{Key: "recipient", Value: recipient},
		logger.Field{Key: "error", Value: richErr})

	if err := d.sender.Send(ctx, recipient, markdown.Strip(chunk), markdown.Plain); err != nil {
		d.metrics.RecordDelivery("failed")
		return err
	}
	d.metrics.RecordDelivery("plain")
	return nil
}
