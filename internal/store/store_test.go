package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"shop-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return &Store{db: sqlx.NewDb(mockDB, "sqlmock")}, mock
}

func TestGetProductBySlug_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT \\* FROM products WHERE slug").
		WithArgs("nonexistent").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetProductBySlug(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveProducts_FiltersOnActiveFlag(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{
		"id", "category_id", "name", "slug", "description", "image",
		"price", "stock", "is_active", "created_at",
	}).AddRow(1, nil, "Mug", "mug", "", nil, "9.99", 10, true, time.Now())

	mock.ExpectQuery("SELECT \\* FROM products WHERE is_active = TRUE").
		WillReturnRows(rows)

	products, err := s.GetActiveProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "mug", products[0].Slug)
	assert.Equal(t, "9.99", products[0].Price.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("a@x.com", "hash").
		WillReturnError(&pq.Error{Code: "23505"})

	err := s.CreateUser(context.Background(), &models.User{Email: "a@x.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUserPassword_UnknownUser(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("newhash", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.UpdateUserPassword(context.Background(), 99, "newhash")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
