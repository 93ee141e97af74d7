// Package config reads process configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// BotConfig holds configuration for the serving bot process.
type BotConfig struct {
	TelegramAPIBase string
	PollTimeout     int
	SleepSeconds    int
	DropPending     bool
	DBPath          string

	// Access control. AllowedChatID 0 means any chat is allowed.
	AllowedChatID int64
	AdminUserID   int64

	// Random-event probabilities and weights.
	EventChance        float64
	ShortMessageChance float64
	StickerWeight      float64
	AnimationWeight    float64
	TextWeight         float64

	// Optional override for the built-in forbidden-endings word list.
	ForbiddenEndingsFile string
}

// LoadBotConfig reads the bot configuration from environment variables.
func LoadBotConfig() (BotConfig, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return BotConfig{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required in environment")
	}

	return BotConfig{
		TelegramAPIBase:      fmt.Sprintf("https://api.telegram.org/bot%s", token),
		PollTimeout:          envIntOrDefault("TG_TIMEOUT", 30),
		SleepSeconds:         envIntOrDefault("TG_SLEEP_SECONDS", 1),
		DropPending:          envBoolOrDefault("TG_DROP_PENDING", true),
		DBPath:               envOrDefault("GOVORUN_DB_PATH", "data/govorun.db"),
		AllowedChatID:        envInt64OrDefault("TELEGRAM_ALLOWED_GROUP", 0),
		AdminUserID:          envInt64OrDefault("TELEGRAM_ADMIN_ID", 0),
		EventChance:          envFloatOrDefault("GOVORUN_EVENT_CHANCE", 0.03),
		ShortMessageChance:   envFloatOrDefault("GOVORUN_SHORT_MESSAGE_CHANCE", 0.7),
		StickerWeight:        envFloatOrDefault("GOVORUN_EVENT_STICKER_WEIGHT", 1.0),
		AnimationWeight:      envFloatOrDefault("GOVORUN_EVENT_GIF_WEIGHT", 1.0),
		TextWeight:           envFloatOrDefault("GOVORUN_EVENT_MESSAGE_WEIGHT", 1.0),
		ForbiddenEndingsFile: os.Getenv("GOVORUN_FORBIDDEN_ENDINGS_FILE"),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64OrDefault(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envFloatOrDefault(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBoolOrDefault(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "1" || strings.EqualFold(v, "true")
}
