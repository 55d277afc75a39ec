package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jobalert/internal/digest"
)

// Telegram caps a message at 4096 characters; stay under it.
const telegramChunk = 3800

type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram authenticates the bot. endpoint overrides the Bot API URL
// format ("https://api.telegram.org/bot%s/%s") and is empty in production.
func NewTelegram(token string, chatID int64, endpoint string) (*Telegram, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoAPIKey
	}
	if chatID == 0 {
		return nil, ErrNoRecipients
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Notify(ctx context.Context, d digest.Digest) error {
	for _, text := range telegramMessages(d) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(t.chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := t.bot.Send(msg); err != nil {
			return fmt.Errorf("telegram send: %w", err)
		}
	}
	return nil
}

// telegramMessages renders d with the small HTML subset Telegram accepts,
// split into chunks on line boundaries.
func telegramMessages(d digest.Digest) []string {
	lines := []string{"<b>" + html.EscapeString(d.Subject) + "</b>"}
	if d.Empty() {
		lines = append(lines, "", "No new postings this run.")
	}
	for _, g := range d.Groups {
		lines = append(lines, "", fmt.Sprintf("<b>%s</b> (%d)", html.EscapeString(g.Source), len(g.Postings)))
		for _, p := range g.Postings {
			line := fmt.Sprintf("• <a href=\"%s\">%s</a>", html.EscapeString(p.Link), html.EscapeString(p.Title))
			if p.Location != "" {
				line += " - " + html.EscapeString(p.Location)
			}
			lines = append(lines, line)
		}
	}

	var out []string
	var b strings.Builder
	for _, l := range lines {
		if b.Len() > 0 && b.Len()+len(l)+1 > telegramChunk {
			out = append(out, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l)
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
