// internal/infra/telegram/client.go
package telegram

import (
	"bytes"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the domain Client interface using the
// gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to the specified chat.
func (tba *TelebotAdapter) SendMessage(chatID int64, text string, options *telebot.SendOptions) (*telebot.Message, error) {
	if options == nil {
		options = &telebot.SendOptions{}
	}
	return tba.bot.Send(&telebot.Chat{ID: chatID}, text, options)
}

// SendPhoto sends PNG bytes with a caption to the specified chat.
func (tba *TelebotAdapter) SendPhoto(chatID int64, png []byte, caption string) (*telebot.Message, error) {
	photo := &telebot.Photo{
		File:    telebot.FromReader(bytes.NewReader(png)),
		Caption: caption,
	}
	return tba.bot.Send(&telebot.Chat{ID: chatID}, photo)
}

// EditText replaces the text of a previously sent message.
func (tba *TelebotAdapter) EditText(msg *telebot.Message, text string) error {
	_, err := tba.bot.Edit(msg, text)
	return err
}

// EditCaption replaces the caption of a previously sent photo message.
func (tba *TelebotAdapter) EditCaption(msg *telebot.Message, caption string) error {
	_, err := tba.bot.EditCaption(msg, caption)
	return err
}

// MemberCount returns the current number of members in the chat.
func (tba *TelebotAdapter) MemberCount(chatID int64) (int, error) {
	return tba.bot.Len(&telebot.Chat{ID: chatID})
}
