package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/catalog", bot.MatchTypePrefix, h.handleCatalog)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cart", bot.MatchTypePrefix, h.handleCart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/orders", bot.MatchTypePrefix, h.handleOrders)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/promo", bot.MatchTypePrefix, h.handlePromoApply)

	// Staff commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/attention", bot.MatchTypePrefix, h.handleAttention)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/active", bot.MatchTypePrefix, h.handleActiveOrders)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/find", bot.MatchTypePrefix, h.handleOrderLookup)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/promoCreate", bot.MatchTypePrefix, h.handlePromoCreate)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/import", bot.MatchTypePrefix, h.handleImport)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/staff", bot.MatchTypePrefix, h.handlePromoteStaff)

	// Catalog callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "cat_", bot.MatchTypePrefix, h.handleCatalogPage)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "prod_", bot.MatchTypePrefix, h.handleProductView)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "add_", bot.MatchTypePrefix, h.handleAddToCart)

	// Cart callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "cart_view", bot.MatchTypeExact, h.handleCartView)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "cart_inc_", bot.MatchTypePrefix, h.handleCartInc)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "cart_dec_", bot.MatchTypePrefix, h.handleCartDec)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "cart_del_", bot.MatchTypePrefix, h.handleCartRemove)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "cart_clear", bot.MatchTypeExact, h.handleCartClear)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "promo_clear", bot.MatchTypeExact, h.handlePromoClear)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "checkout", bot.MatchTypeExact, h.handleCheckoutStart)

	// Order callbacks (shopper)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "ord_view_", bot.MatchTypePrefix, h.handleOrderView)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "ord_proof_", bot.MatchTypePrefix, h.handleProofStart)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "ord_recv_", bot.MatchTypePrefix, h.handleConfirmReceived)

	// Order callbacks (staff)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "adm_ord_", bot.MatchTypePrefix, h.handleStaffTransition)

	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "cur", bot.MatchTypeExact, h.handleNoop)
}

// HandleDefault routes non-command updates: checkout details and payment
// proof photos arrive as plain messages.
func (h *Handler) HandleDefault(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if len(update.Message.Photo) > 0 {
		h.handleProofPhoto(ctx, b, update)
		return
	}
	if update.Message.Text != "" && update.Message.Text[0] != '/' && h.isPendingCheckout(chatID) {
		h.handleCheckoutDetails(ctx, b, update)
	}
}

// handleNoop acknowledges callbacks from non-interactive buttons such as the
// pagination indicator.
func (h *Handler) handleNoop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
	}
}
