// Package events delivers "new follower" notifications to external subscribers.
// Delivery is fire-and-forget: publishers log failures and never report them back.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NewFollower is emitted once for every edge accepted by a follow operation.
type NewFollower struct {
	ID         string    `json:"id"`
	FollowerID uint      `json:"follower_id"`
	FollowedID uint      `json:"followed_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewFollowerEvent stamps a fresh event id and time
func NewFollowerEvent(followerID, followedID uint) NewFollower {
	return NewFollower{
		ID:         uuid.NewString(),
		FollowerID: followerID,
		FollowedID: followedID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher receives new follower events
type Publisher interface {
	PublishNewFollower(ctx context.Context, event NewFollower)
}

// Multi fans an event out to every publisher in order
type Multi []Publisher

func (m Multi) PublishNewFollower(ctx context.Context, event NewFollower) {
	for _, p := range m {
		p.PublishNewFollower(ctx, event)
	}
}

// Nop drops every event
type Nop struct{}

func (Nop) PublishNewFollower(context.Context, NewFollower) {}

// LogPublisher writes events to the structured log
type LogPublisher struct {
	log *logrus.Entry
}

func NewLogPublisher(log *logrus.Entry) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishNewFollower(_ context.Context, event NewFollower) {
	p.log.WithFields(logrus.Fields{
		"event_id":    event.ID,
		"follower_id": event.FollowerID,
		"followed_id": event.FollowedID,
	}).Info("new follower")
}
