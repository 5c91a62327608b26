package services

import (
	"context"
	"testing"

	"github.com/jjudge-oj/contacts/internal/testutil"
	"github.com/jjudge-oj/contacts/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	mem       *testutil.Memory
	publisher *testutil.Publisher
	objects   *testutil.ObjectStore

	users     *UserService
	contacts  *ContactService
	addresses *AddressService
	exports   *ExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := testutil.NewMemory()
	publisher := &testutil.Publisher{}
	objects := testutil.NewObjectStore()
	events := NewEvents(publisher, "contacts.events")

	return &fixture{
		mem:       mem,
		publisher: publisher,
		objects:   objects,
		users:     NewUserService(mem.Users(), bcrypt.MinCost, events),
		contacts:  NewContactService(mem.Contacts(), events),
		addresses: NewAddressService(mem.Addresses(), events),
		exports:   NewExportService(mem.Contacts(), mem.Addresses(), objects),
	}
}

func (f *fixture) register(t *testing.T, username string) types.User {
	t.Helper()
	user, err := f.users.Register(context.Background(), RegisterInput{
		Username: username,
		Password: "secret-" + username,
		Name:     "Name " + username,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) contact(t *testing.T, userID int64, name string) types.Contact {
	t.Helper()
	contact, err := f.contacts.Create(context.Background(), userID, types.Contact{Name: name})
	require.NoError(t, err)
	return contact
}

func strPtr(s string) *string {
	return &s
}
