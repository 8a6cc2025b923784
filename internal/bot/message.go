package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MediaRef points at a file held by Telegram.
type MediaRef struct {
	FileID   string
	FileSize int64
	MimeType string
	Width    int
	Height   int
	Duration int
}

// InboundMessage is the slice of a Telegram message the router dispatches on.
type InboundMessage struct {
	ChatID    int64
	UserID    int64
	MessageID int

	Command string
	Args    string

	Photo    *MediaRef
	Video    *MediaRef
	Document *MediaRef
}

// IsCommand reports whether the message is a bot command.
func (m InboundMessage) IsCommand() bool {
	return m.Command != ""
}

// VideoDocument reports whether the message carries a document declared as video.
func (m InboundMessage) VideoDocument() bool {
	return m.Document != nil && strings.HasPrefix(strings.ToLower(m.Document.MimeType), videoMimePrefix)
}

// VideoMedia returns the native video or the video-typed document, if any.
func (m InboundMessage) VideoMedia() *MediaRef {
	if m.Video != nil {
		return m.Video
	}

	if m.VideoDocument() {
		return m.Document
	}

	return nil
}

func fromTelegram(msg *tgbotapi.Message) InboundMessage {
	in := InboundMessage{
		MessageID: msg.MessageID,
	}

	if msg.Chat != nil {
		in.ChatID = msg.Chat.ID
	}

	if msg.From != nil {
		in.UserID = msg.From.ID
	}

	if msg.IsCommand() {
		in.Command = strings.ToLower(msg.Command())
		in.Args = strings.TrimSpace(msg.CommandArguments())
	}

	if photo := largestPhoto(msg.Photo); photo != nil {
		in.Photo = &MediaRef{
			FileID:   photo.FileID,
			FileSize: int64(photo.FileSize),
			Width:    photo.Width,
			Height:   photo.Height,
		}
	}

	if v := msg.Video; v != nil {
		in.Video = &MediaRef{
			FileID:   v.FileID,
			FileSize: int64(v.FileSize),
			MimeType: v.MimeType,
			Width:    v.Width,
			Height:   v.Height,
			Duration: v.Duration,
		}
	}

	if d := msg.Document; d != nil {
		in.Document = &MediaRef{
			FileID:   d.FileID,
			FileSize: int64(d.FileSize),
			MimeType: d.MimeType,
		}
	}

	return in
}

func largestPhoto(sizes []tgbotapi.PhotoSize) *tgbotapi.PhotoSize {
	var best *tgbotapi.PhotoSize

	for i := range sizes {
		if best == nil || sizes[i].Width*sizes[i].Height > best.Width*best.Height {
			best = &sizes[i]
		}
	}

	return best
}
