package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/userswatch/backend/internal/models"
	"github.com/anonto42/userswatch/backend/internal/repositories"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publisherFunc func(context.Context, NewFollower)

func (f publisherFunc) PublishNewFollower(ctx context.Context, event NewFollower) { f(ctx, event) }

type fakeNotificationRepository struct {
	repositories.NotificationRepository
	created []*models.Notification
	err     error
}

func (r *fakeNotificationRepository) CreateNotification(_ context.Context, n *models.Notification) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, n)
	return nil
}

type fakeActivityRepository struct {
	docs []*models.FollowEvent
}

func (r *fakeActivityRepository) InsertFollowEvent(_ context.Context, event *models.FollowEvent) error {
	r.docs = append(r.docs, event)
	return nil
}

func newTestEntry() (*logrus.Entry, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return logrus.NewEntry(logger), hook
}

func TestNewFollowerEvent(t *testing.T) {
	a := NewFollowerEvent(1, 2)
	b := NewFollowerEvent(1, 2)

	assert.Equal(t, uint(1), a.FollowerID)
	assert.Equal(t, uint(2), a.FollowedID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, time.UTC, a.OccurredAt.Location())
}

func TestMultiPublishesInOrder(t *testing.T) {
	var calls []string
	multi := Multi{
		publisherFunc(func(context.Context, NewFollower) { calls = append(calls, "first") }),
		Nop{},
		publisherFunc(func(context.Context, NewFollower) { calls = append(calls, "second") }),
	}

	multi.PublishNewFollower(context.Background(), NewFollowerEvent(1, 2))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestLogPublisher(t *testing.T) {
	entry, hook := newTestEntry()
	event := NewFollowerEvent(1, 2)

	NewLogPublisher(entry).PublishNewFollower(context.Background(), event)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "new follower", last.Message)
	assert.Equal(t, event.ID, last.Data["event_id"])
	assert.Equal(t, uint(2), last.Data["followed_id"])
}

func TestNotificationPublisher(t *testing.T) {
	users := repositories.NewMemoryUserRepository()
	require.NoError(t, users.CreateUser(context.Background(), &models.User{Name: "Alice"}))
	notifs := &fakeNotificationRepository{}
	entry, hook := newTestEntry()
	p := NewNotificationPublisher(notifs, users, entry)

	event := NewFollowerEvent(1, 2)
	p.PublishNewFollower(context.Background(), event)

	require.Len(t, notifs.created, 1)
	n := notifs.created[0]
	assert.Equal(t, models.NotificationTypeFollow, n.Type)
	assert.Equal(t, uint(1), n.ActorID)
	assert.Equal(t, uint(2), n.RecipientID)
	assert.Equal(t, event.ID, n.EventID)
	assert.Equal(t, "Alice started watching you", n.Message)

	// unknown follower: nothing stored, a warning logged
	p.PublishNewFollower(context.Background(), NewFollowerEvent(9, 2))
	assert.Len(t, notifs.created, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	notifs.err = errors.New("insert failed")
	p.PublishNewFollower(context.Background(), event)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestActivityPublisher(t *testing.T) {
	repo := &fakeActivityRepository{}
	entry, _ := newTestEntry()
	event := NewFollowerEvent(3, 4)

	NewActivityPublisher(repo, entry).PublishNewFollower(context.Background(), event)

	require.Len(t, repo.docs, 1)
	assert.Equal(t, &models.FollowEvent{
		EventID:    event.ID,
		FollowerID: 3,
		FollowedID: 4,
		OccurredAt: event.OccurredAt,
	}, repo.docs[0])
}

func TestRedisPublisherLogsDeliveryFailure(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	entry, hook := newTestEntry()

	NewRedisPublisher(client, "userswatch.new-follower", entry).PublishNewFollower(context.Background(), NewFollowerEvent(1, 2))

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.ErrorLevel, last.Level)
	assert.Equal(t, "userswatch.new-follower", last.Data["channel"])
}
