// Package watchlist owns the directed "watches" relation between user accounts.
//
// Every mutation is idempotent: following an already watched user, unfollowing
// a user that is not watched, or clearing an empty list all succeed. Targets
// that cannot be resolved, that opted out of being watched, or that are the
// follower itself are silently left out of the accepted list; callers compare
// input and output lengths to detect them. Errors are returned only when the
// backing store fails.
package watchlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/userswatch/backend/internal/events"
	"github.com/anonto42/userswatch/backend/internal/metrics"
	"github.com/anonto42/userswatch/backend/internal/models"
	"github.com/anonto42/userswatch/backend/internal/repositories"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrPreferenceLocked is returned when the allow-all override hides the per-user opt-in
var ErrPreferenceLocked = errors.New("watch list preference is disabled: every user can be watched")

// UserView is a watched or watching account, as listed to callers
type UserView = models.UserCompact

// Counts holds the sizes of both directions of a user's relations
type Counts struct {
	Following int64 `json:"following"`
	Followers int64 `json:"followers"`
}

// Config carries the store's collaborators and policy
type Config struct {
	// AllowAll makes every account followable regardless of its opt-in flag.
	AllowAll bool
	Events   events.Publisher
	Metrics  *metrics.Metrics
	Log      *logrus.Entry
}

// Store is the relationship store
type Store struct {
	users    repositories.UserRepository
	watches  repositories.WatchRepository
	events   events.Publisher
	metrics  *metrics.Metrics
	allowAll bool
	log      *logrus.Entry
}

// NewStore creates a Store. Missing collaborators in cfg fall back to no-ops.
func NewStore(userRepo repositories.UserRepository, watchRepo repositories.WatchRepository, cfg Config) *Store {
	s := &Store{
		users:    userRepo,
		watches:  watchRepo,
		events:   cfg.Events,
		metrics:  cfg.Metrics,
		allowAll: cfg.AllowAll,
		log:      cfg.Log,
	}
	if s.events == nil {
		s.events = events.Nop{}
	}
	if s.log == nil {
		s.log = logrus.NewEntry(logrus.StandardLogger())
	}
	return s
}

// AllowAll reports whether the global override is active
func (s *Store) AllowAll() bool { return s.allowAll }

// IsFollowable is the policy gate applied to every follow target
func (s *Store) IsFollowable(target *models.User) bool {
	return s.allowAll || target.AllowFollow
}

// resolve returns nil, nil when the reference does not name an existing account.
func (s *Store) resolve(ctx context.Context, ref UserRef) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if ref.IsName() {
		name, ok := NormalizeName(ref.name)
		if !ok {
			return nil, nil
		}
		user, err = s.users.GetUserByName(ctx, name)
	} else {
		user, err = s.users.GetUserByID(ctx, ref.id)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve user %q: %w", ref.String(), err)
	}
	return user, nil
}

// Follow adds targets to the follower's watch list and returns the references
// that were accepted, exactly as they were passed in.
func (s *Store) Follow(ctx context.Context, follower uint, targets []UserRef) ([]UserRef, error) {
	accepted := make([]UserRef, 0, len(targets))
	edges := make([]models.UsersWatch, 0, len(targets))
	staged := make(map[uint]struct{}, len(targets))

	for _, ref := range targets {
		target, err := s.resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		entry := s.log.WithFields(logrus.Fields{"follower_id": follower, "target": ref.String()})
		switch {
		case target == nil:
			entry.Debug("follow target not found")
			continue
		case target.ID == follower:
			entry.Debug("follow target is the follower")
			continue
		case !s.IsFollowable(target):
			entry.Debug("follow target does not allow being watched")
			continue
		}

		if _, dup := staged[target.ID]; !dup {
			staged[target.ID] = struct{}{}
			edges = append(edges, models.UsersWatch{FollowerID: follower, FollowedID: target.ID})
		}
		accepted = append(accepted, ref)
	}

	existing := map[uint]struct{}{}
	if len(edges) > 0 {
		ids, err := s.watches.GetFollowedIDs(ctx, follower)
		if err != nil {
			return nil, fmt.Errorf("list watch list: %w", err)
		}
		for _, id := range ids {
			existing[id] = struct{}{}
		}
	}

	if err := s.watches.InsertIgnore(ctx, edges); err != nil {
		return nil, fmt.Errorf("insert watch list entries: %w", err)
	}
	MemoFrom(ctx).forget(follower)

	s.metrics.FollowAccepted(len(accepted))
	s.metrics.FollowRejected(len(targets) - len(accepted))

	// already watched targets are accepted again but announced only once
	for _, e := range edges {
		if _, ok := existing[e.FollowedID]; ok {
			continue
		}
		s.events.PublishNewFollower(ctx, events.NewFollowerEvent(follower, e.FollowedID))
	}
	return accepted, nil
}

// Unfollow removes targets from the follower's watch list
func (s *Store) Unfollow(ctx context.Context, follower uint, targets []UserRef) error {
	defer MemoFrom(ctx).forget(follower)

	for _, ref := range targets {
		target, err := s.resolve(ctx, ref)
		if err != nil {
			return err
		}
		if target == nil {
			continue
		}
		if err := s.watches.DeleteWatch(ctx, follower, target.ID); err != nil {
			return fmt.Errorf("delete watch list entry: %w", err)
		}
	}
	s.metrics.Unfollowed(len(targets))
	return nil
}

// ClearAll empties the follower's watch list. Edges pointing at the follower are kept.
func (s *Store) ClearAll(ctx context.Context, follower uint) error {
	defer MemoFrom(ctx).forget(follower)

	if err := s.watches.DeleteAllByFollower(ctx, follower); err != nil {
		return fmt.Errorf("clear watch list: %w", err)
	}
	return nil
}

// followedAccounts re-resolves every stored target id; ids whose account is gone are skipped.
func (s *Store) followedAccounts(ctx context.Context, follower uint) ([]*models.User, error) {
	ids, err := s.watches.GetFollowedIDs(ctx, follower)
	if err != nil {
		return nil, fmt.Errorf("list watch list: %w", err)
	}
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		u, err := s.resolve(ctx, ByID(id))
		if err != nil {
			return nil, err
		}
		if u == nil {
			s.log.WithFields(logrus.Fields{"follower_id": follower, "followed_id": id}).Warn("watch list entry points at a missing user")
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

// ListFollowing returns the ids the follower watches, in no particular order
func (s *Store) ListFollowing(ctx context.Context, follower uint) ([]uint, error) {
	users, err := s.followedAccounts(ctx, follower)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids, nil
}

// ListFollowingNames returns the names the follower watches, in no particular order
func (s *Store) ListFollowingNames(ctx context.Context, follower uint) ([]string, error) {
	users, err := s.followedAccounts(ctx, follower)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Name
	}
	return names, nil
}

// ListFollowingDetailed returns the watched accounts ordered by name
func (s *Store) ListFollowingDetailed(ctx context.Context, follower uint) ([]UserView, error) {
	users, err := s.watches.GetFollowedUsers(ctx, follower)
	if err != nil {
		return nil, fmt.Errorf("list watched users: %w", err)
	}
	return toViews(users), nil
}

// ListFollowers returns the accounts watching followed, ordered by name
func (s *Store) ListFollowers(ctx context.Context, followed uint) ([]UserView, error) {
	users, err := s.watches.GetFollowerUsers(ctx, followed)
	if err != nil {
		return nil, fmt.Errorf("list watchers: %w", err)
	}
	return toViews(users), nil
}

// ListFollowerIds returns the ids watching followed
func (s *Store) ListFollowerIds(ctx context.Context, followed uint) ([]uint, error) {
	ids, err := s.watches.GetFollowerIDs(ctx, followed)
	if err != nil {
		return nil, fmt.Errorf("list watcher ids: %w", err)
	}
	return ids, nil
}

// GetCounts counts both directions; nothing is cached.
func (s *Store) GetCounts(ctx context.Context, user uint) (Counts, error) {
	following, err := s.watches.GetFollowingCount(ctx, user)
	if err != nil {
		return Counts{}, fmt.Errorf("count following: %w", err)
	}
	followers, err := s.watches.GetFollowersCount(ctx, user)
	if err != nil {
		return Counts{}, fmt.Errorf("count followers: %w", err)
	}
	return Counts{Following: following, Followers: followers}, nil
}

// IsFollowing answers from the request Memo when the context carries one.
// The follower's whole set is loaded on first use and dropped on every mutation
// made through this store.
func (s *Store) IsFollowing(ctx context.Context, follower, followed UserRef) (bool, error) {
	from, err := s.resolve(ctx, follower)
	if err != nil || from == nil {
		return false, err
	}
	to, err := s.resolve(ctx, followed)
	if err != nil || to == nil {
		return false, err
	}

	memo := MemoFrom(ctx)
	set, ok := memo.lookup(from.ID)
	if !ok {
		ids, err := s.watches.GetFollowedIDs(ctx, from.ID)
		if err != nil {
			return false, fmt.Errorf("list watch list: %w", err)
		}
		set = make(map[uint]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		memo.store(from.ID, set)
	}
	_, following := set[to.ID]
	return following, nil
}

// AllowFollow returns the user's stored opt-in. Under AllowAll the stored value is not consulted by Follow.
func (s *Store) AllowFollow(ctx context.Context, user uint) (bool, error) {
	u, err := s.users.GetUserByID(ctx, user)
	if err != nil {
		return false, err
	}
	return u.AllowFollow, nil
}

// SetAllowFollow updates the opt-in; it fails with ErrPreferenceLocked under the override.
func (s *Store) SetAllowFollow(ctx context.Context, user uint, allow bool) error {
	if s.allowAll {
		return ErrPreferenceLocked
	}
	return s.users.UpdateAllowFollow(ctx, user, allow)
}

func toViews(users []models.User) []UserView {
	views := make([]UserView, len(users))
	for i := range users {
		views[i] = users[i].ToCompact()
	}
	return views
}
