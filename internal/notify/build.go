package notify

import (
	"fmt"

	"jobalert/internal/config"
	"jobalert/internal/logger"
	"jobalert/internal/secrets"
)

// FromConfig builds a Multi over every enabled notifier. Credentials left
// empty in config are looked up in the OS keychain. With nothing enabled it
// returns nil.
func FromConfig(cfg config.Notify, log logger.Logger) (*Multi, error) {
	var ns []Notifier

	if sg := cfg.SendGrid; sg.Enabled {
		key, err := secrets.Resolve(sg.APIKey, sg.KeyringID, secrets.SendGridAccount)
		if err != nil {
			return nil, fmt.Errorf("sendgrid api key: %w", err)
		}
		n, err := NewSendGrid(SendGridOptions{
			APIKey:   key,
			From:     sg.From,
			To:       sg.To,
			Endpoint: sg.Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("sendgrid: %w", err)
		}
		ns = append(ns, n)
	}

	if tg := cfg.Telegram; tg.Enabled {
		token, err := secrets.Resolve(tg.Token, tg.KeyringID, secrets.TelegramAccount)
		if err != nil {
			return nil, fmt.Errorf("telegram token: %w", err)
		}
		n, err := NewTelegram(token, tg.ChatID, "")
		if err != nil {
			return nil, err
		}
		ns = append(ns, n)
	}

	if cfg.Console.Enabled {
		ns = append(ns, NewConsole(nil))
	}

	if len(ns) == 0 {
		return nil, nil
	}
	return NewMulti(log, ns...), nil
}
