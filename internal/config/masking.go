package config

import "strings"

// maskSecret keeps the first and last four characters of a secret.
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) < 8 {
		return "***"
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}

// maskTelegramToken masks a <bot_id>:<token> pair, leaving the bot id visible.
func maskTelegramToken(token string) string {
	if token == "" {
		return ""
	}

	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		return maskSecret(token)
	}

	return parts[0] + ":" + maskSecret(parts[1])
}

// Redacted returns a copy of the config that is safe to print.
func (c *Config) Redacted() Config {
	out := *c
	out.Telegram.Token = maskTelegramToken(c.Telegram.Token)
	return out
}
