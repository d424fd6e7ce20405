package config

import "time"

const (
	// Attention queue bounds
	AttentionLimitMin = 3
	AttentionLimitMax = 20

	// Attention report cache duration
	AttentionCacheDuration = 2 * time.Minute

	// Attention warm-up interval
	AttentionRefreshInterval = 5 * time.Minute

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Rate limits (per minute)
	RateLimitShopper = 20
	RateLimitStaff   = 40

	// Catalog pagination
	ProductsPerPage = 5

	// Shopper order history pagination
	OrdersPerPage = 5

	// Promo code generation
	PromoCodeLength = 8

	// HTTP timeout for the product-card importer
	ImporterTimeout = 30 * time.Second
)
