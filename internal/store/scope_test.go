package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeWhere(t *testing.T) {
	assert.Equal(t, "id = $1 AND user_id = $2", ContactScope.Where())
	assert.Equal(t, "id = $1 AND contact_id = $2", AddressScope.Where())
}

func TestScopeResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("owned row", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(q("SELECT 1 FROM contacts WHERE id = $1 AND user_id = $2")).
			WithArgs(int64(5), int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

		require.NoError(t, ContactScope.Resolve(ctx, db, 5, 1))
	})

	t.Run("missing or foreign row is not found", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(q("SELECT 1 FROM contacts WHERE id = $1 AND user_id = $2")).
			WithArgs(int64(5), int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

		err := ContactScope.Resolve(ctx, db, 5, 2)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(q("SELECT 1 FROM addresses WHERE id = $1 AND contact_id = $2")).
			WillReturnError(errors.New("db down"))

		err := AddressScope.Resolve(ctx, db, 9, 5)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "db down")
	})
}

func TestResolvePathStopsAtFirstMiss(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("SELECT 1 FROM contacts WHERE id = $1 AND user_id = $2")).
		WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	err := resolvePath(context.Background(), db, 1,
		Step{Scope: ContactScope, ID: 5},
		Step{Scope: AddressScope, ID: 9},
	)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolvePathChainsOwners(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("SELECT 1 FROM contacts WHERE id = $1 AND user_id = $2")).
		WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(q("SELECT 1 FROM addresses WHERE id = $1 AND contact_id = $2")).
		WithArgs(int64(9), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	err := resolvePath(context.Background(), db, 1,
		Step{Scope: ContactScope, ID: 5},
		Step{Scope: AddressScope, ID: 9},
	)
	require.NoError(t, err)
}
