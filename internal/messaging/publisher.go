package messaging

import (
	"fmt"

	"github.com/google/uuid"
)

// PlayerSubject is the subject a player's session listens on for notices.
func PlayerSubject(id uuid.UUID) string {
	return fmt.Sprintf("player-%s", id)
}

// NatsPublisher publishes messages to individual player NATS channels.
type NatsPublisher struct {
	server *NatsServer
}

// NewNatsPublisher wraps a NatsServer for per-player message delivery.
func NewNatsPublisher(server *NatsServer) *NatsPublisher {
	return &NatsPublisher{server: server}
}

// PublishToPlayer delivers text to every session of the player.
func (p *NatsPublisher) PublishToPlayer(id uuid.UUID, text string) error {
	return p.server.Publish(PlayerSubject(id), []byte(text))
}

// PublishToPlayers delivers text to each player except those in exclude.
func (p *NatsPublisher) PublishToPlayers(ids []uuid.UUID, exclude []uuid.UUID, text string) error {
	excludeSet := make(map[uuid.UUID]bool, len(exclude))
	for _, id := range exclude {
		excludeSet[id] = true
	}

	var firstErr error
	for _, id := range ids {
		if excludeSet[id] {
			continue
		}
		if err := p.PublishToPlayer(id, text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Publish sends data to an arbitrary subject.
func (p *NatsPublisher) Publish(subject string, data []byte) error {
	return p.server.Publish(subject, data)
}
