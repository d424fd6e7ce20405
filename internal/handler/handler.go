package handler

import (
	"sync"

	"github.com/go-telegram/bot"

	"github.com/set-night/shopapp/internal/config"
	"github.com/set-night/shopapp/internal/service"
	"github.com/set-night/shopapp/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot       *bot.Bot
	cfg       *config.Config
	users     *service.UserService
	carts     *service.CartService
	catalog   *service.CatalogService
	orders    *service.OrderService
	promos    *service.PromoService
	attention *service.AttentionService
	importer  *service.ImporterService
	notifier  *telegram.StaffNotifier

	// Per-chat conversation state: a pending checkout waits for delivery
	// details, a pending proof waits for a photo.
	mu              sync.Mutex
	pendingCheckout map[int64]bool
	pendingProof    map[int64]int64 // chat id -> order id
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot       *bot.Bot
	Cfg       *config.Config
	Users     *service.UserService
	Carts     *service.CartService
	Catalog   *service.CatalogService
	Orders    *service.OrderService
	Promos    *service.PromoService
	Attention *service.AttentionService
	Importer  *service.ImporterService
	Notifier  *telegram.StaffNotifier
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:             deps.Bot,
		cfg:             deps.Cfg,
		users:           deps.Users,
		carts:           deps.Carts,
		catalog:         deps.Catalog,
		orders:          deps.Orders,
		promos:          deps.Promos,
		attention:       deps.Attention,
		importer:        deps.Importer,
		notifier:        deps.Notifier,
		pendingCheckout: make(map[int64]bool),
		pendingProof:    make(map[int64]int64),
	}
}

func (h *Handler) setPendingCheckout(chatID int64, pending bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if pending {
		h.pendingCheckout[chatID] = true
	} else {
		delete(h.pendingCheckout, chatID)
	}
}

func (h *Handler) isPendingCheckout(chatID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pendingCheckout[chatID]
}

func (h *Handler) setPendingProof(chatID, orderID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if orderID == 0 {
		delete(h.pendingProof, chatID)
	} else {
		h.pendingProof[chatID] = orderID
	}
}

func (h *Handler) takePendingProof(chatID int64) (int64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	orderID, ok := h.pendingProof[chatID]
	delete(h.pendingProof, chatID)
	return orderID, ok
}
