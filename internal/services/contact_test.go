package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/jjudge-oj/contacts/internal/store"
	"github.com/jjudge-oj/contacts/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactService_OwnershipIsHidden(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	contact := f.contact(t, alice.ID, "Carol")

	_, err := f.contacts.Get(ctx, bob.ID, contact.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.contacts.Update(ctx, bob.ID, contact.ID, ContactPatch{Name: strPtr("Hijacked")})
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, f.contacts.Delete(ctx, bob.ID, contact.ID), store.ErrNotFound)

	_, err = f.contacts.Get(ctx, alice.ID, 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := f.contacts.Get(ctx, alice.ID, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carol", got.Name)
}

func TestContactService_CreateBindsOwner(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")

	created, err := f.contacts.Create(context.Background(), alice.ID, types.Contact{ID: 42, UserID: 999, Name: "Carol"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, created.UserID)
	assert.NotEqual(t, int64(42), created.ID)
}

func TestContactService_UpdateSkipsEmptyFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	contact, err := f.contacts.Create(ctx, alice.ID, types.Contact{
		Name:  "Carol",
		Email: strPtr("carol@example.com"),
		Phone: strPtr("0800"),
	})
	require.NoError(t, err)

	updated, err := f.contacts.Update(ctx, alice.ID, contact.ID, ContactPatch{
		Name:  strPtr(""),
		Email: nil,
		Phone: strPtr("0900"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Carol", updated.Name)
	assert.Equal(t, "carol@example.com", *updated.Email)
	assert.Equal(t, "0900", *updated.Phone)
}

func TestContactService_Search(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	for i := 1; i <= 12; i++ {
		name := fmt.Sprintf("John Doe %d", i)
		if i%2 == 0 {
			name = fmt.Sprintf("Jane DOE %d", i)
		}
		f.contact(t, alice.ID, name)
	}
	f.contact(t, alice.ID, "Somebody Else")
	f.contact(t, bob.ID, "Bob's Doe")

	t.Run("second page of matches", func(t *testing.T) {
		page, err := f.contacts.Search(ctx, alice.ID, types.ContactFilter{Name: "doe"}, 2, 5)
		require.NoError(t, err)
		assert.Len(t, page.Items, 5)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 5, page.Size)
		assert.Equal(t, 12, page.Total)
		assert.Equal(t, 3, page.TotalPages)
		for _, c := range page.Items {
			assert.Equal(t, alice.ID, c.UserID)
			assert.Contains(t, strings.ToLower(c.Name), "doe")
		}
	})

	t.Run("empty filter pages the full set", func(t *testing.T) {
		page, err := f.contacts.Search(ctx, alice.ID, types.ContactFilter{}, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, DefaultPageSize, page.Size)
		assert.Equal(t, 13, page.Total)
		assert.Len(t, page.Items, DefaultPageSize)
	})

	t.Run("no matches is an empty page", func(t *testing.T) {
		page, err := f.contacts.Search(ctx, alice.ID, types.ContactFilter{Email: "nobody"}, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Zero(t, page.Total)
		assert.Zero(t, page.TotalPages)
	})

	t.Run("size is clamped", func(t *testing.T) {
		page, err := f.contacts.Search(ctx, alice.ID, types.ContactFilter{}, 1, 1000)
		require.NoError(t, err)
		assert.Equal(t, MaxPageSize, page.Size)
	})

	t.Run("last allowed page is empty", func(t *testing.T) {
		page, err := f.contacts.Search(ctx, alice.ID, types.ContactFilter{}, MaxPage, MaxPageSize)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, MaxPage, page.Page)
		assert.Equal(t, 13, page.Total)
	})

	t.Run("page beyond MaxPage is rejected", func(t *testing.T) {
		_, err := f.contacts.Search(ctx, alice.ID, types.ContactFilter{}, math.MaxInt64, MaxPageSize)
		assert.ErrorIs(t, err, ErrPageOutOfRange)
	})
}

func TestContactService_DeleteCascadesAddresses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	contact := f.contact(t, alice.ID, "Carol")
	_, err := f.addresses.Create(ctx, alice.ID, contact.ID, types.Address{City: strPtr("Jakarta")})
	require.NoError(t, err)

	require.NoError(t, f.contacts.Delete(ctx, alice.ID, contact.ID))
	assert.Zero(t, f.mem.AddressCount())

	var kinds []types.EventType
	for _, e := range f.publisher.Events() {
		kinds = append(kinds, e.Type)
	}
	assert.Equal(t, []types.EventType{
		types.EventUserRegistered,
		types.EventContactCreated,
		types.EventAddressCreated,
		types.EventContactDeleted,
	}, kinds)
}
