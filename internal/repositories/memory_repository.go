package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/userswatch/backend/internal/models"
	"gorm.io/gorm"
)

// MemoryUserRepository is a process-local UserRepository used when STORAGE_DRIVER=memory
// and by tests. Missing rows are reported as gorm.ErrRecordNotFound like the Postgres one.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID uint
	byID   map[uint]models.User
}

// NewMemoryUserRepository creates an empty MemoryUserRepository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{nextID: 1, byID: make(map[uint]models.User)}
}

func (r *MemoryUserRepository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Name == user.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == 0 {
		user.ID = r.nextID
	}
	if user.ID >= r.nextID {
		r.nextID = user.ID + 1
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.byID[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) GetUserByName(_ context.Context, name string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Name == name {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MemoryUserRepository) UpdateAllowFollow(_ context.Context, id uint, allow bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.AllowFollow = allow
	u.UpdatedAt = time.Now()
	r.byID[id] = u
	return nil
}

// DeleteUser drops the account but, like the SQL schema, leaves its edges in place.
func (r *MemoryUserRepository) DeleteUser(id uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

// MemoryWatchRepository is a process-local WatchRepository. Joins resolve against users.
type MemoryWatchRepository struct {
	mu    sync.RWMutex
	edges map[models.UsersWatch]struct{}
	users *MemoryUserRepository
}

// NewMemoryWatchRepository creates an empty MemoryWatchRepository joined to users
func NewMemoryWatchRepository(users *MemoryUserRepository) *MemoryWatchRepository {
	return &MemoryWatchRepository{edges: make(map[models.UsersWatch]struct{}), users: users}
}

func (r *MemoryWatchRepository) InsertIgnore(_ context.Context, edges []models.UsersWatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range edges {
		r.edges[e] = struct{}{}
	}
	return nil
}

func (r *MemoryWatchRepository) DeleteWatch(_ context.Context, followerID, followedID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.edges, models.UsersWatch{FollowerID: followerID, FollowedID: followedID})
	return nil
}

func (r *MemoryWatchRepository) DeleteAllByFollower(_ context.Context, followerID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for e := range r.edges {
		if e.FollowerID == followerID {
			delete(r.edges, e)
		}
	}
	return nil
}

func (r *MemoryWatchRepository) GetFollowedIDs(_ context.Context, followerID uint) ([]uint, error) {
	return r.collect(func(e models.UsersWatch) (uint, bool) { return e.FollowedID, e.FollowerID == followerID }), nil
}

func (r *MemoryWatchRepository) GetFollowerIDs(ctx context.Context, followedID uint) ([]uint, error) {
	ids := r.collect(func(e models.UsersWatch) (uint, bool) { return e.FollowerID, e.FollowedID == followedID })
	return r.existing(ctx, ids), nil
}

func (r *MemoryWatchRepository) GetFollowedUsers(ctx context.Context, followerID uint) ([]models.User, error) {
	ids, _ := r.GetFollowedIDs(ctx, followerID)
	return r.join(ctx, ids), nil
}

func (r *MemoryWatchRepository) GetFollowerUsers(ctx context.Context, followedID uint) ([]models.User, error) {
	ids, _ := r.GetFollowerIDs(ctx, followedID)
	return r.join(ctx, ids), nil
}

func (r *MemoryWatchRepository) GetFollowingCount(ctx context.Context, userID uint) (int64, error) {
	ids, _ := r.GetFollowedIDs(ctx, userID)
	return int64(len(r.existing(ctx, ids))), nil
}

func (r *MemoryWatchRepository) GetFollowersCount(ctx context.Context, userID uint) (int64, error) {
	ids, _ := r.GetFollowerIDs(ctx, userID)
	return int64(len(ids)), nil
}

// existing keeps the ids whose account is still present
func (r *MemoryWatchRepository) existing(ctx context.Context, ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, err := r.users.GetUserByID(ctx, id); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func (r *MemoryWatchRepository) collect(match func(models.UsersWatch) (uint, bool)) []uint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint, 0)
	for e := range r.edges {
		if id, ok := match(e); ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// join behaves like an INNER JOIN: edges pointing at missing users are skipped.
func (r *MemoryWatchRepository) join(ctx context.Context, ids []uint) []models.User {
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, err := r.users.GetUserByID(ctx, id); err == nil {
			users = append(users, *u)
		}
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users
}
