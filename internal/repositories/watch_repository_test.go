package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/userswatch/backend/internal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertIgnore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresWatchRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "users_watch_list" \("follower_id","followed_id"\) VALUES \(\$1,\$2\),\(\$3,\$4\) ON CONFLICT DO NOTHING`).
		WithArgs(1, 2, 1, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.InsertIgnore(context.Background(), []models.UsersWatch{
		{FollowerID: 1, FollowedID: 2},
		{FollowerID: 1, FollowedID: 3},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertIgnoreWithoutEdgesSkipsDatabase(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresWatchRepository(db)

	require.NoError(t, repo.InsertIgnore(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertIgnoreError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresWatchRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "users_watch_list"`).WillReturnError(errors.New("connection refused"))
	mock.ExpectRollback()

	err := repo.InsertIgnore(context.Background(), []models.UsersWatch{{FollowerID: 1, FollowedID: 2}})
	assert.ErrorContains(t, err, "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWatch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresWatchRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "users_watch_list" WHERE follower_id = \$1 AND followed_id = \$2`).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteWatch(context.Background(), 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAllByFollower(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresWatchRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "users_watch_list" WHERE follower_id = \$1`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteAllByFollower(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFollowedAndFollowerIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresWatchRepository(db)

	mock.ExpectQuery(`SELECT "followed_id" FROM "users_watch_list" WHERE follower_id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"followed_id"}).AddRow(2).AddRow(5))
	mock.ExpectQuery(`SELECT .*follower_id.* FROM "users_watch_list" JOIN users ON users.id = users_watch_list.follower_id WHERE users_watch_list.followed_id = \$1`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"follower_id"}).AddRow(1))

	followed, err := repo.GetFollowedIDs(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 5}, followed)

	followers, err := repo.GetFollowerIDs(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, followers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFollowedUsersOrdersByName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresWatchRepository(db)

	mock.ExpectQuery(`FROM "users" JOIN users_watch_list ON users_watch_list.followed_id = users.id WHERE users_watch_list.follower_id = \$1 ORDER BY users.name COLLATE "C" ASC`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "allow_follow"}).
			AddRow(4, "Adam", true).
			AddRow(2, "Bob", true))

	users, err := repo.GetFollowedUsers(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Adam", users[0].Name)
	assert.Equal(t, uint(2), users[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFollowerUsers(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresWatchRepository(db)

	mock.ExpectQuery(`FROM "users" JOIN users_watch_list ON users_watch_list.follower_id = users.id WHERE users_watch_list.followed_id = \$1`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Alice"))

	users, err := repo.GetFollowerUsers(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Alice", users[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCounts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresWatchRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users_watch_list" JOIN users ON users.id = users_watch_list.followed_id WHERE users_watch_list.follower_id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "users_watch_list" JOIN users ON users.id = users_watch_list.follower_id WHERE users_watch_list.followed_id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	following, err := repo.GetFollowingCount(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), following)

	followers, err := repo.GetFollowersCount(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), followers)
	assert.NoError(t, mock.ExpectationsWereMet())
}
