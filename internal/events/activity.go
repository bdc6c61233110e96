package events

import (
	"context"

	"github.com/anonto42/userswatch/backend/internal/models"
	"github.com/anonto42/userswatch/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// ActivityPublisher appends events to the follow activity log
type ActivityPublisher struct {
	activity repositories.ActivityRepository
	log      *logrus.Entry
}

func NewActivityPublisher(activityRepo repositories.ActivityRepository, log *logrus.Entry) *ActivityPublisher {
	return &ActivityPublisher{activity: activityRepo, log: log}
}

func (p *ActivityPublisher) PublishNewFollower(ctx context.Context, event NewFollower) {
	doc := &models.FollowEvent{
		EventID:    event.ID,
		FollowerID: event.FollowerID,
		FollowedID: event.FollowedID,
		OccurredAt: event.OccurredAt,
	}
	if err := p.activity.InsertFollowEvent(ctx, doc); err != nil {
		p.log.WithError(err).WithField("event_id", event.ID).Error("failed to record follow event")
	}
}
