package repositories

import (
	"context"

	"github.com/anonto42/userswatch/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WatchRepository defines the interface for users watch list data operations
type WatchRepository interface {
	InsertIgnore(ctx context.Context, edges []models.UsersWatch) error
	DeleteWatch(ctx context.Context, followerID, followedID uint) error
	DeleteAllByFollower(ctx context.Context, followerID uint) error
	GetFollowedIDs(ctx context.Context, followerID uint) ([]uint, error)
	GetFollowerIDs(ctx context.Context, followedID uint) ([]uint, error)
	GetFollowedUsers(ctx context.Context, followerID uint) ([]models.User, error)
	GetFollowerUsers(ctx context.Context, followedID uint) ([]models.User, error)
	GetFollowingCount(ctx context.Context, userID uint) (int64, error)
	GetFollowersCount(ctx context.Context, userID uint) (int64, error)
}

// byNameOrdinal sorts on the raw bytes of the name, independent of the database locale
const byNameOrdinal = `users.name COLLATE "C" ASC`

// edges whose account was deleted drop out of these joins
const (
	joinFollowedUser = "JOIN users ON users.id = users_watch_list.followed_id"
	joinFollowerUser = "JOIN users ON users.id = users_watch_list.follower_id"
)

// PostgresWatchRepository implements WatchRepository for PostgreSQL
type PostgresWatchRepository struct {
	db *gorm.DB
}

// NewPostgresWatchRepository creates a new PostgresWatchRepository
func NewPostgresWatchRepository(db *gorm.DB) *PostgresWatchRepository {
	return &PostgresWatchRepository{db: db}
}

// InsertIgnore inserts all edges in one statement; edges that already exist are skipped.
func (r *PostgresWatchRepository) InsertIgnore(ctx context.Context, edges []models.UsersWatch) error {
	if len(edges) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error
}

// DeleteWatch removes a single edge. Removing an absent edge is not an error.
func (r *PostgresWatchRepository) DeleteWatch(ctx context.Context, followerID, followedID uint) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.UsersWatch{}).Error
}

func (r *PostgresWatchRepository) DeleteAllByFollower(ctx context.Context, followerID uint) error {
	return r.db.WithContext(ctx).Where("follower_id = ?", followerID).Delete(&models.UsersWatch{}).Error
}

func (r *PostgresWatchRepository) GetFollowedIDs(ctx context.Context, followerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.UsersWatch{}).Where("follower_id = ?", followerID).Pluck("followed_id", &ids).Error
	return ids, err
}

// GetFollowerIDs only returns watchers whose account still exists
func (r *PostgresWatchRepository) GetFollowerIDs(ctx context.Context, followedID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.UsersWatch{}).
		Joins(joinFollowerUser).
		Where("users_watch_list.followed_id = ?", followedID).
		Pluck("users_watch_list.follower_id", &ids).Error
	return ids, err
}

// GetFollowedUsers joins the watch list with the user table, ordered by name
func (r *PostgresWatchRepository) GetFollowedUsers(ctx context.Context, followerID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN users_watch_list ON users_watch_list.followed_id = users.id").
		Where("users_watch_list.follower_id = ?", followerID).
		Order(byNameOrdinal).
		Find(&users).Error
	return users, err
}

// GetFollowerUsers joins the watchers of a user with the user table, ordered by name
func (r *PostgresWatchRepository) GetFollowerUsers(ctx context.Context, followedID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN users_watch_list ON users_watch_list.follower_id = users.id").
		Where("users_watch_list.followed_id = ?", followedID).
		Order(byNameOrdinal).
		Find(&users).Error
	return users, err
}

// GetFollowingCount counts watched accounts that still exist, matching GetFollowedUsers
func (r *PostgresWatchRepository) GetFollowingCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UsersWatch{}).
		Joins(joinFollowedUser).
		Where("users_watch_list.follower_id = ?", userID).
		Count(&count).Error
	return count, err
}

// GetFollowersCount counts watchers that still exist, matching GetFollowerUsers
func (r *PostgresWatchRepository) GetFollowersCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UsersWatch{}).
		Joins(joinFollowerUser).
		Where("users_watch_list.followed_id = ?", userID).
		Count(&count).Error
	return count, err
}
