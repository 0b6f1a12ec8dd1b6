package natsadapter

import (
	"context"
	"encoding/json"

	nats "github.com/nats-io/nats.go"

	"github.com/MaxGalant/auth-api/internal/domain"
)

// EventPublisher emits account-lifecycle events after the owning transaction
// commits. Fire-and-forget: subscribers get at-least-once best effort.
type EventPublisher interface {
	PublishUserCreated(ctx context.Context, user *domain.User) error
}

type eventPublisher struct {
	conn    *nats.Conn
	subject string
}

func NewEventPublisher(conn *nats.Conn, subject string) EventPublisher {
	return &eventPublisher{conn: conn, subject: subject}
}

func (p *eventPublisher) PublishUserCreated(_ context.Context, user *domain.User) error {
	payload := map[string]interface{}{
		"id":          user.ID,
		"first_name":  user.FirstName,
		"second_name": user.SecondName,
		"nickname":    user.Nickname,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject, data)
}
