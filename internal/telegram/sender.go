package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const MaxMessageLen = 4096

// SendMessage sends a Markdown message, falling back to plain text if
// Telegram rejects the markup.
func SendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) error {
	if len([]rune(text)) > MaxMessageLen {
		text = string([]rune(text)[:MaxMessageLen-3]) + "..."
	}

	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	_, err := b.SendMessage(ctx, params)
	if err != nil {
		slog.Warn("markdown send failed, falling back to plain text", "error", err)
		params.ParseMode = ""
		if _, err = b.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}
	return nil
}

// EditMessage edits a message in place, with the same plain-text fallback.
func EditMessage(ctx context.Context, b *bot.Bot, chatID int64, messageID int, text string, markup models.ReplyMarkup) error {
	if len([]rune(text)) > MaxMessageLen {
		text = string([]rune(text)[:MaxMessageLen-3]) + "..."
	}

	params := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	_, err := b.EditMessageText(ctx, params)
	if err != nil {
		params.ParseMode = ""
		_, err = b.EditMessageText(ctx, params)
	}
	return err
}

// SendPhotoURL sends a photo by URL with a caption.
func SendPhotoURL(ctx context.Context, b *bot.Bot, chatID int64, photoURL, caption string, markup models.ReplyMarkup) error {
	params := &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileString{Data: photoURL},
		Caption: caption,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	_, err := b.SendPhoto(ctx, params)
	if err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a callback query, optionally with a toast.
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
}
