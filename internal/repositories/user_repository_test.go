package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anonto42/userswatch/backend/internal/models"
)

func TestGetUserByName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE name = \$1 ORDER BY "users"."id" LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "allow_follow"}).AddRow(2, "Bob", true))

	user, err := repo.GetUserByName(context.Background(), "Bob")
	require.NoError(t, err)
	assert.Equal(t, uint(2), user.ID)
	assert.True(t, user.AllowFollow)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	user, err := repo.GetUserByID(context.Background(), 99)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAllowFollow(t *testing.T) {
	tests := []struct {
		name    string
		rows    int64
		wantErr error
	}{
		{name: "updated", rows: 1},
		{name: "missing user", rows: 0, wantErr: gorm.ErrRecordNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewPostgresUserRepository(db)

			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE "users" SET "allow_follow"=\$1,"updated_at"=\$2 WHERE id = \$3`).
				WillReturnResult(sqlmock.NewResult(0, tt.rows))
			mock.ExpectCommit()

			err := repo.UpdateAllowFollow(context.Background(), 1, true)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users" .* RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectCommit()

	user := &models.User{Name: "Dave", AllowFollow: true}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	assert.Equal(t, uint(5), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryUserRepository(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	alice := &models.User{Name: "Alice"}
	require.NoError(t, repo.CreateUser(ctx, alice))
	assert.Equal(t, uint(1), alice.ID)
	assert.ErrorIs(t, repo.CreateUser(ctx, &models.User{Name: "Alice"}), gorm.ErrDuplicatedKey)

	require.NoError(t, repo.UpdateAllowFollow(ctx, 1, true))
	got, err := repo.GetUserByName(ctx, "Alice")
	require.NoError(t, err)
	assert.True(t, got.AllowFollow)

	repo.DeleteUser(1)
	_, err = repo.GetUserByID(ctx, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.UpdateAllowFollow(ctx, 1, false), gorm.ErrRecordNotFound)
}
