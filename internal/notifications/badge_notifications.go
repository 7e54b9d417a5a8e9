package notifications

import (
	"context"
	"errors"
	"fmt"

	"gigrate/internal/domain/badges"
	"gigrate/internal/domain/storage"

	"github.com/9ssi7/exponent"
)

var ErrNoTokens = errors.New("no push tokens registered for user")

// SendBadgeEarned pushes one notification per newly granted badge to every
// device the user has registered. Delivery failures should be logged by the
// caller, never surfaced to the request that triggered the grant.
func SendBadgeEarned(ctx context.Context, push PushSender, store *storage.Container, userID int64, granted []badges.Badge) error {
	if len(granted) == 0 {
		return nil
	}

	tokens, err := store.PushTokens.TokensByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return ErrNoTokens
	}

	msgs := make([]*exponent.Message, 0, len(tokens)*len(granted))
	for _, badge := range granted {
		title := "Badge earned! 🏆"
		body := fmt.Sprintf("You just earned %q — %s", badge.Name, badge.Description)
		for _, t := range tokens {
			token := exponent.Token(t)
			msgs = append(msgs, &exponent.Message{
				To:    []*exponent.Token{&token},
				Title: title,
				Body:  body,
				Data: map[string]string{
					"type":    "badge",
					"badgeId": fmt.Sprintf("%d", badge.ID),
					"screen":  "badges-screen",
				},
			})
		}
	}

	_, err = push.Publish(ctx, msgs)
	return err
}
