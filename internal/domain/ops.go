package domain

import "time"

type OpsItemType string

const (
	OpsItemStaleOrder  OpsItemType = "stale_order"
	OpsItemProductCard OpsItemType = "product_card"
	OpsItemLowStock    OpsItemType = "low_stock"
)

// OpsQueueItem is one entry of the staff attention queue. Ephemeral:
// recomputed on each query, never persisted.
type OpsQueueItem struct {
	Type              OpsItemType
	Priority          int
	Title             string
	Subtitle          string
	RecommendedAction string

	// Stale order meta
	OrderID      int64
	HoursWaited  int
	WithoutProof bool

	// Product card meta
	ProductID int64
	Reasons   []string

	// Low stock meta
	VariantID     int64
	StockQuantity int
	IsOut         bool
}

// OpsThresholds configures the attention scan.
type OpsThresholds struct {
	LowStockThreshold int
	StaleOrderHours   int
	IncludeLowStock   bool
	Limit             int
}

// OpsReport is the prioritized action queue plus an aggregate severity score
// summarizing overall backlog pressure.
type OpsReport struct {
	Items              []OpsQueueItem
	SeverityScore      int
	StaleOrders        int
	IncompleteProducts int
	LowStockVariants   int
	GeneratedAt        time.Time
}
