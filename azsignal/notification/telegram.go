// Package notification pushes emitted signals to operators.
package notification

import (
	"fmt"
	"time"

	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/ezquant/azsignal/azsignal/model"
)

// Notifier receives every signal the engine emits.
type Notifier interface {
	OnSignal(sig *model.SignalEvent) error
}

// Telegram sends one message per signal to a fixed chat.
type Telegram struct {
	bot  *tb.Bot
	chat *tb.Chat
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tb.NewBot(tb.Settings{
		Token:  token,
		Poller: &tb.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("notification: telegram: %w", err)
	}
	return &Telegram{bot: bot, chat: &tb.Chat{ID: chatID}}, nil
}

func (t *Telegram) OnSignal(sig *model.SignalEvent) error {
	_, err := t.bot.Send(t.chat, formatSignal(sig))
	return err
}

func formatSignal(sig *model.SignalEvent) string {
	msg := fmt.Sprintf("%s %s %s\n%s %s @ %.8g",
		sig.Venue, sig.Symbol, sig.Timeframe,
		sig.Direction, sig.OrderType, sig.EntryPrice)
	for i, target := range sig.Targets {
		msg += fmt.Sprintf("\nT%d: %.8g (%.0f%%)", i+1, target.Price, target.ClosePct)
	}
	if sig.StopPrice != nil {
		msg += fmt.Sprintf("\nstop: %.8g", *sig.StopPrice)
	}
	msg += fmt.Sprintf("\n%s, %s", sig.Strategy, sig.EntryTime().Format(time.RFC3339))
	return msg
}
