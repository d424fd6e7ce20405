package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/shopapp/internal/config"
	"github.com/set-night/shopapp/internal/domain"
	"github.com/set-night/shopapp/internal/middleware"
	"github.com/set-night/shopapp/internal/telegram"
)

func (h *Handler) handleCatalog(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendCatalogPage(ctx, b, update.Message.Chat.ID, 0, 0)
}

func (h *Handler) handleCatalogPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}
	telegram.AnswerCallback(ctx, b, cb.ID, "")

	page, err := strconv.Atoi(strings.TrimPrefix(cb.Data, "cat_"))
	if err != nil || cb.Message.Message == nil {
		return
	}
	msg := cb.Message.Message
	h.sendCatalogPage(ctx, b, msg.Chat.ID, msg.ID, page)
}

// sendCatalogPage renders one page of the catalog. messageID == 0 sends a new
// message, otherwise the existing one is edited in place.
func (h *Handler) sendCatalogPage(ctx context.Context, b *bot.Bot, chatID int64, messageID, page int) {
	products, total, err := h.catalog.Page(ctx, page)
	if err != nil {
		slog.Error("load catalog", "error", err)
		telegram.SendMessage(ctx, b, chatID, "❌ Не удалось загрузить каталог.", nil)
		return
	}
	if len(products) == 0 {
		telegram.SendMessage(ctx, b, chatID, "Каталог пока пуст.", nil)
		return
	}

	totalPages := (total + config.ProductsPerPage - 1) / config.ProductsPerPage

	var rows [][]models.InlineKeyboardButton
	for _, p := range products {
		label := p.Title
		if p.Price != nil {
			label = fmt.Sprintf("%s — %s ₽", p.Title, p.Price.StringFixed(0))
		}
		rows = append(rows, telegram.ButtonRow(
			telegram.InlineButton(label, fmt.Sprintf("prod_%d", p.ID)),
		))
	}
	if totalPages > 1 {
		rows = append(rows, telegram.PaginationRow(page, totalPages, "cat"))
	}

	text := fmt.Sprintf("🛍 *Каталог* (стр. %d/%d)", page+1, totalPages)
	markup := telegram.InlineKeyboard(rows...)
	if messageID == 0 {
		telegram.SendMessage(ctx, b, chatID, text, markup)
	} else {
		telegram.EditMessage(ctx, b, chatID, messageID, text, markup)
	}
}

func (h *Handler) handleProductView(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}
	telegram.AnswerCallback(ctx, b, cb.ID, "")

	productID, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, "prod_"), 10, 64)
	if err != nil || cb.Message.Message == nil {
		return
	}
	chatID := cb.Message.Message.Chat.ID

	product, variants, err := h.catalog.ProductCard(ctx, productID)
	if err != nil {
		slog.Error("load product", "error", err, "product_id", productID)
		telegram.SendMessage(ctx, b, chatID, "❌ Товар не найден.", nil)
		return
	}

	text := fmt.Sprintf("*%s*", product.Title)
	if product.Description != "" {
		text += "\n\n" + product.Description
	}

	var rows [][]models.InlineKeyboardButton
	for _, v := range variants {
		label := variantLabel(v)
		if !v.InStock() {
			rows = append(rows, telegram.ButtonRow(telegram.InlineButton(label+" — нет в наличии", "cur")))
			continue
		}
		rows = append(rows, telegram.ButtonRow(
			telegram.InlineButton("➕ "+label, fmt.Sprintf("add_%d", v.ID)),
		))
	}
	rows = append(rows, telegram.ButtonRow(telegram.InlineButton("⬅️ К каталогу", "cat_0")))

	markup := telegram.InlineKeyboard(rows...)
	if product.ImageURL != "" {
		if err := telegram.SendPhotoURL(ctx, b, chatID, product.ImageURL, stripMarkdown(text), markup); err == nil {
			return
		}
		// A broken image URL must not hide the product.
	}
	telegram.SendMessage(ctx, b, chatID, text, markup)
}

func variantLabel(v domain.Variant) string {
	parts := make([]string, 0, 3)
	if v.Size != "" {
		parts = append(parts, v.Size)
	}
	if v.Color != "" {
		parts = append(parts, v.Color)
	}
	parts = append(parts, v.Price.StringFixed(0)+" ₽")
	return strings.Join(parts, " / ")
}

func stripMarkdown(s string) string {
	return strings.NewReplacer("*", "", "_", "", "`", "").Replace(s)
}

func (h *Handler) handleAddToCart(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}

	variantID, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, "add_"), 10, 64)
	if err != nil {
		return
	}

	if err := h.carts.Add(ctx, user, variantID, 1); err != nil {
		switch err {
		case domain.ErrOutOfStock:
			telegram.AnswerCallback(ctx, b, cb.ID, "Нет в наличии")
		case domain.ErrVariantNotFound:
			telegram.AnswerCallback(ctx, b, cb.ID, "Товар не найден")
		default:
			slog.Error("add to cart", "error", err, "variant_id", variantID)
			telegram.AnswerCallback(ctx, b, cb.ID, "Ошибка, попробуйте ещё раз")
		}
		return
	}
	telegram.AnswerCallback(ctx, b, cb.ID, "Добавлено в корзину ✅")
}
