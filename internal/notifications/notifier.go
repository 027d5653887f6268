// Package notifications publishes fire-and-forget alerts about account
// activity to an external topic.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
)

const Subject = "Career Counselor System Alert"

type Message struct {
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Username string `json:"username"`
	Action   string `json:"action"`
}

func NewMessage(username, action string) Message {
	return Message{
		Subject:  Subject,
		Body:     fmt.Sprintf("User %s has performed: %s", username, action),
		Username: username,
		Action:   action,
	}
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

type Observer interface {
	ObserveNotification(err error)
}

// Notifier is the best-effort front of a Publisher: failures are logged and
// never returned.
type Notifier struct {
	pub Publisher
	log *slog.Logger
	obs Observer
}

func NewNotifier(pub Publisher, log *slog.Logger, obs Observer) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{pub: pub, log: log, obs: obs}
}

func (n *Notifier) Notify(ctx context.Context, username, action string) {
	if n == nil || n.pub == nil {
		return
	}

	err := n.pub.Publish(ctx, NewMessage(username, action))
	if n.obs != nil {
		n.obs.ObserveNotification(err)
	}
	if err != nil {
		n.log.WarnContext(ctx, "notification publish failed", "username", username, "action", action, "err", err)
	}
}
