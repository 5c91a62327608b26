package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jjudge-oj/contacts/internal/store"
	"github.com/jjudge-oj/contacts/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressService_ScopedThroughContact(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	home := f.contact(t, alice.ID, "Home")
	work := f.contact(t, alice.ID, "Work")

	address, err := f.addresses.Create(ctx, alice.ID, home.ID, types.Address{Street: strPtr("Jl. Sudirman")})
	require.NoError(t, err)
	assert.Equal(t, home.ID, address.ContactID)

	t.Run("through another contact of the same user", func(t *testing.T) {
		_, err := f.addresses.Get(ctx, alice.ID, work.ID, address.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = f.addresses.Update(ctx, alice.ID, work.ID, address.ID, types.Address{})
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.ErrorIs(t, f.addresses.Delete(ctx, alice.ID, work.ID, address.ID), store.ErrNotFound)
	})

	t.Run("as another user", func(t *testing.T) {
		_, err := f.addresses.Get(ctx, bob.ID, home.ID, address.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = f.addresses.List(ctx, bob.ID, home.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	got, err := f.addresses.Get(ctx, alice.ID, home.ID, address.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jl. Sudirman", *got.Street)
}

func TestAddressService_CreateUnderMissingContact(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")

	_, err := f.addresses.Create(context.Background(), alice.ID, 4040, types.Address{City: strPtr("Bandung")})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Zero(t, f.mem.AddressCount())
}

func TestAddressService_UpdateReplacesEveryField(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	contact := f.contact(t, alice.ID, "Carol")

	address, err := f.addresses.Create(ctx, alice.ID, contact.ID, types.Address{
		Street:     strPtr("Jl. Sudirman"),
		City:       strPtr("Jakarta"),
		PostalCode: strPtr("10220"),
	})
	require.NoError(t, err)

	updated, err := f.addresses.Update(ctx, alice.ID, contact.ID, address.ID, types.Address{
		Street:  strPtr(""),
		Country: strPtr("Indonesia"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Street)
	assert.Equal(t, "", *updated.Street)
	assert.Nil(t, updated.City)
	assert.Nil(t, updated.PostalCode)
	assert.Equal(t, "Indonesia", *updated.Country)
}

func TestAddressService_PublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	contact := f.contact(t, alice.ID, "Carol")
	f.publisher.Err = errors.New("broker down")

	address, err := f.addresses.Create(ctx, alice.ID, contact.ID, types.Address{})
	require.NoError(t, err)
	require.NoError(t, f.addresses.Delete(ctx, alice.ID, contact.ID, address.ID))
}

func TestEvents_NilIsNoop(t *testing.T) {
	var events *Events
	assert.NotPanics(t, func() {
		events.emit(context.Background(), types.Event{Type: types.EventContactCreated})
	})
}
