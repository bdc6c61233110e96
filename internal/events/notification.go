package events

import (
	"context"

	"github.com/anonto42/userswatch/backend/internal/models"
	"github.com/anonto42/userswatch/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// NotificationPublisher turns events into "follow" rows of the notifications table
type NotificationPublisher struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	log           *logrus.Entry
}

func NewNotificationPublisher(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository, log *logrus.Entry) *NotificationPublisher {
	return &NotificationPublisher{notifications: notifRepo, users: userRepo, log: log}
}

func (p *NotificationPublisher) PublishNewFollower(ctx context.Context, event NewFollower) {
	actor, err := p.users.GetUserByID(ctx, event.FollowerID)
	if err != nil {
		p.log.WithError(err).WithField("follower_id", event.FollowerID).Warn("notification skipped, follower not found")
		return
	}

	notif := &models.Notification{
		Type:        models.NotificationTypeFollow,
		ActorID:     event.FollowerID,
		RecipientID: event.FollowedID,
		EventID:     event.ID,
		Message:     actor.Name + " started watching you",
		CreatedAt:   event.OccurredAt,
	}
	if err := p.notifications.CreateNotification(ctx, notif); err != nil {
		p.log.WithError(err).WithField("event_id", event.ID).Error("failed to store follow notification")
	}
}
