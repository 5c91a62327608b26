package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jjudge-oj/contacts/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var addressRowColumns = []string{"id", "contact_id", "street", "city", "province", "country", "postal_code", "created_at", "updated_at"}

const lockContact = "SELECT 1 FROM contacts WHERE id = $1 AND user_id = $2 FOR SHARE"

func TestAddressRepository_CreateUnderMissingContact(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q(lockContact)).
		WithArgs(int64(99), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectRollback()

	_, err := NewAddressRepository(db).Create(context.Background(), 1, types.Address{ContactID: 99, City: ptr("Jakarta")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddressRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q(lockContact)).
		WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(q("INSERT INTO addresses (contact_id, street, city, province, country, postal_code, created_at, updated_at)")).
		WithArgs(int64(5), "Jl. Contoh No. 1", "Jakarta", nil, "Indonesia", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))
	mock.ExpectCommit()

	address, err := NewAddressRepository(db).Create(context.Background(), 1, types.Address{
		ContactID: 5,
		Street:    ptr("Jl. Contoh No. 1"),
		City:      ptr("Jakarta"),
		Country:   ptr("Indonesia"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), address.ID)
	assert.Equal(t, int64(5), address.ContactID)
}

func TestAddressRepository_GetThroughOtherContact(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("SELECT 1 FROM contacts WHERE id = $1 AND user_id = $2")).
		WithArgs(int64(6), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(q("FROM addresses WHERE id = $1 AND contact_id = $2")).
		WithArgs(int64(12), int64(6)).
		WillReturnRows(sqlmock.NewRows(addressRowColumns))

	_, err := NewAddressRepository(db).Get(context.Background(), 1, 6, 12)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddressRepository_List(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()
	mock.ExpectQuery(q("SELECT 1 FROM contacts WHERE id = $1 AND user_id = $2")).
		WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(q("FROM addresses WHERE contact_id = $1 ORDER BY id")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(addressRowColumns).
			AddRow(int64(12), int64(5), "Street", nil, nil, "Indonesia", "12345", now, now))

	addresses, err := NewAddressRepository(db).List(context.Background(), 1, 5)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Nil(t, addresses[0].City)
	require.NotNil(t, addresses[0].PostalCode)
	assert.Equal(t, "12345", *addresses[0].PostalCode)
}

func TestAddressRepository_UpdateWritesEveryField(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2025, 7, 7, 9, 49, 42, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(q(lockContact)).
		WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(q("UPDATE addresses SET street = $3, city = $4, province = $5, country = $6, postal_code = $7, updated_at = $8 WHERE id = $1 AND contact_id = $2 RETURNING created_at")).
		WithArgs(int64(12), int64(5), "", nil, nil, nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectCommit()

	address, err := NewAddressRepository(db).Update(context.Background(), 1, types.Address{
		ID:        12,
		ContactID: 5,
		Street:    ptr(""),
	})
	require.NoError(t, err)
	require.NotNil(t, address.Street)
	assert.Equal(t, "", *address.Street)
	assert.Equal(t, created, address.CreatedAt)
}

func TestAddressRepository_DeleteMissingAddress(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q(lockContact)).
		WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec(q("DELETE FROM addresses WHERE id = $1 AND contact_id = $2")).
		WithArgs(int64(12), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := NewAddressRepository(db).Delete(context.Background(), 1, 5, 12)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddressRepository_BeginFailure(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	err := NewAddressRepository(db).Delete(context.Background(), 1, 5, 12)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
}
