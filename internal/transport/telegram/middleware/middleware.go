package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"
)

// Logger assigns a request id to the update and logs its duration and result.
func Logger() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			now := time.Now()

			rqID := uuid.NewString()
			c.Set("rqID", rqID)

			var chatID int64
			if c.Chat() != nil {
				chatID = c.Chat().ID
			}

			slog.Info(
				"start request",
				slog.String("rqID", rqID),
				slog.Int64("chatID", chatID),
				slog.String("action", action(c)),
			)

			err := next(c)

			attrs := []any{
				slog.String("rqID", rqID),
				slog.String("request duration", fmt.Sprintf("%.2fs", time.Since(now).Seconds())),
			}
			if err != nil {
				slog.Error("request failed", append(attrs, slog.String("err", err.Error()))...)
			} else {
				slog.Info("request finished", attrs...)
			}

			return err
		}
	}
}

// action names the update for logs: the button unique or the command.
func action(c tele.Context) string {
	if cb := c.Callback(); cb != nil {
		return "callback:" + cb.Unique
	}
	if msg := c.Message(); msg != nil {
		if len(msg.Text) > 0 && msg.Text[0] == '/' {
			return "command:" + msg.Text
		}
		return "text"
	}
	return "other"
}
