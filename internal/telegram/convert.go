package telegram

import (
	"encoding/json"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/transcript/internal/sizing"
	"github.com/user/transcript/internal/types"
)

// eventFromMessage maps a chat message onto a timeline event. Message ids
// increase within a chat, so they serve as Seq. Messages from anyone but
// the bot count as replies.
func eventFromMessage(msg *tgbotapi.Message, botID int64) (*types.Event, bool) {
	if msg == nil {
		return nil, false
	}

	var (
		kind    types.EventKind
		payload any
	)
	switch {
	case len(msg.Photo) > 0:
		p := largestPhoto(msg.Photo)
		kind = types.KindPicture
		payload = sizing.PicturePayload{URL: "tg://file/" + p.FileID, Width: float64(p.Width), Height: float64(p.Height)}
	case msg.Text != "":
		kind = types.KindText
		payload = sizing.TextPayload{Text: msg.Text, Format: "plain"}
	default:
		return nil, false
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, false
	}
	ts := types.MicrosFromTime(time.Unix(int64(msg.Date), 0))
	return &types.Event{
		Seq:       int64(msg.MessageID),
		Timestamp: ts,
		CreatedAt: ts,
		Kind:      kind,
		IsReply:   msg.From == nil || msg.From.ID != botID,
		Payload:   raw,
	}, true
}

func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, p := range sizes[1:] {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return best
}
