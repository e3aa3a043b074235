// Package telegram delivers rendered log messages to a Telegram chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	tele "gopkg.in/telebot.v4"

	"hooklog/internal/transport"
	"hooklog/pkg/hooklog"
)

const textLimit = 4000

// Config selects the bot and the destination chat.
type Config struct {
	Token    string
	ChatID   int64
	ThreadID int
	Silent   bool
}

// botAPI is the subset of *tele.Bot used for delivery.
type botAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Sender implements hooklog.Sender on top of a telebot bot.
type Sender struct {
	bot botAPI
	to  transport.ChatTarget
	opt transport.SendOptions
}

// New builds an offline bot: no request is made until the first Send.
func New(cfg Config) (*Sender, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat_id is empty")
	}
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token, Offline: true})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return newSender(b, cfg), nil
}

func newSender(b botAPI, cfg Config) *Sender {
	return &Sender{
		bot: b,
		to:  transport.ChatTarget{ChatID: cfg.ChatID, ThreadID: cfg.ThreadID},
		opt: transport.SendOptions{ParseMode: tele.ModeHTML, DisablePreview: true, Silent: cfg.Silent},
	}
}

// Send renders text and embed as HTML and sends it, split into chunks when
// it exceeds the message limit.
func (s *Sender) Send(ctx context.Context, text string, embed *hooklog.Embed) error {
	body := renderHTML(text, embed)
	chunks := splitText(body, textLimit, s.opt.ParseMode)
	chat := tele.ChatID(s.to.ChatID)

	for _, chunk := range chunks {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		_, err := s.bot.Send(chat, chunk, &tele.SendOptions{
			ParseMode:             s.opt.ParseMode,
			DisableWebPagePreview: s.opt.DisablePreview,
			DisableNotification:   s.opt.Silent,
			ThreadID:              s.to.ThreadID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// renderHTML lays an embed out as Telegram HTML:
//
//	<b>ERROR</b> Logging event at ...
//	<pre>description</pre>
//	<b>File Name</b>: disk.py
//	<i>footer</i>
func renderHTML(text string, e *hooklog.Embed) string {
	if e == nil {
		return html.EscapeString(text)
	}
	var b strings.Builder
	if e.Title != "" {
		b.WriteString("<b>")
		b.WriteString(html.EscapeString(e.Title))
		b.WriteString("</b>")
		if text != "" {
			b.WriteString(" ")
		}
	}
	b.WriteString(html.EscapeString(text))
	if e.Description != "" {
		b.WriteString("\n<pre>")
		b.WriteString(html.EscapeString(e.Description))
		b.WriteString("</pre>")
	}
	for _, f := range e.Fields {
		b.WriteString("\n<b>")
		b.WriteString(html.EscapeString(f.Name))
		b.WriteString("</b>: ")
		b.WriteString(html.EscapeString(f.Value))
	}
	if e.Footer != "" {
		b.WriteString("\n<i>")
		b.WriteString(html.EscapeString(e.Footer))
		b.WriteString("</i>")
	}
	return b.String()
}
