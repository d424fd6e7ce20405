package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

type Config struct {
	// Core
	BotToken    string `env:"BOT_TOKEN,required"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Pricing
	DeliveryFee           decimal.Decimal `env:"DELIVERY_FEE" envDefault:"449"`
	FreeDeliveryThreshold decimal.Decimal `env:"FREE_DELIVERY_THRESHOLD" envDefault:"5000"`
	ReferralDiscountPct   int             `env:"REFERRAL_DISCOUNT_PERCENT" envDefault:"5"`

	// Operational attention
	StaleOrderHours   int  `env:"STALE_ORDER_HOURS" envDefault:"24"`
	LowStockThreshold int  `env:"LOW_STOCK_THRESHOLD" envDefault:"2"`
	IncludeLowStock   bool `env:"ATTENTION_INCLUDE_LOW_STOCK" envDefault:"false"`
	AttentionLimit    int  `env:"ATTENTION_LIMIT" envDefault:"8"`

	// Admin
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Telegram staff channel
	StaffChatID         int64 `env:"STAFF_CHAT_ID"`
	StaffTopicOrders    int   `env:"STAFF_TOPIC_ORDERS"`
	StaffTopicPayments  int   `env:"STAFF_TOPIC_PAYMENTS"`
	StaffTopicAttention int   `env:"STAFF_TOPIC_ATTENTION"`
	StaffTopicError     int   `env:"STAFF_TOPIC_ERROR"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func (c *Config) AdminIDsString() string {
	parts := make([]string, len(c.AdminIDs))
	for i, id := range c.AdminIDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}
