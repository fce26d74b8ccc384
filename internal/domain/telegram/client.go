package telegram

import "gopkg.in/telebot.v3"

// Client is the announcement sink. It decouples application services from
// the bot library while still handing back telebot message handles, which
// the asynchronous refinement needs for edits.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) (*telebot.Message, error)
	SendPhoto(chatID int64, png []byte, caption string) (*telebot.Message, error)
	EditText(msg *telebot.Message, text string) error
	EditCaption(msg *telebot.Message, caption string) error
	MemberCount(chatID int64) (int, error)
}
