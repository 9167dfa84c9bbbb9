package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

const (
	callbackMenu        = "menu"
	callbackClearBuffer = "buffer_clear"
	callbackShowBuffer  = "buffer_show"
	callbackGenerate    = "generate"
)

func menuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Clear buffer", callbackClearBuffer),
			tgbotapi.NewInlineKeyboardButtonData("📄 Show buffer", callbackShowBuffer),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✍️ Generate", callbackGenerate),
		),
	)
}

func returnKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Return to menu", callbackMenu),
		),
	)
}
