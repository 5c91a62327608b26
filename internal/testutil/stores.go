// Package testutil holds in-memory implementations of the service
// dependencies. They behave like the Postgres repositories: ids are
// sequential, usernames and tokens are unique, and every contact and address
// lookup is scoped to its owner.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jjudge-oj/contacts/internal/store"
	"github.com/jjudge-oj/contacts/types"
)

// Memory is the shared state behind UserStore, ContactStore and AddressStore.
// Set the *Err fields to inject failures; zero value means no error.
type Memory struct {
	CreateUserErr   error
	GetByTokenErr   error
	SetTokenErr     error
	ListContactsErr error
	SearchErr       error
	ListAddressErr  error

	mu        sync.Mutex
	nextID    int64
	users     map[int64]types.User
	contacts  map[int64]types.Contact
	addresses map[int64]types.Address
}

func NewMemory() *Memory {
	return &Memory{
		users:     make(map[int64]types.User),
		contacts:  make(map[int64]types.Contact),
		addresses: make(map[int64]types.Address),
	}
}

func (m *Memory) Users() *UserStore { return &UserStore{m: m} }
func (m *Memory) Contacts() *ContactStore { return &ContactStore{m: m} }
func (m *Memory) Addresses() *AddressStore { return &AddressStore{m: m} }

// AddressCount returns the number of stored addresses.
func (m *Memory) AddressCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.addresses)
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *Memory) ownedContact(userID, id int64) (types.Contact, bool) {
	contact, ok := m.contacts[id]
	if !ok || contact.UserID != userID {
		return types.Contact{}, false
	}
	return contact, true
}

// UserStore implements services.UserRepository.
type UserStore struct{ m *Memory }

func (s *UserStore) GetByID(_ context.Context, id int64) (types.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	user, ok := s.m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (s *UserStore) GetByUsername(_ context.Context, username string) (types.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, user := range s.m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (s *UserStore) GetByToken(_ context.Context, token string) (types.User, error) {
	if s.m.GetByTokenErr != nil {
		return types.User{}, s.m.GetByTokenErr
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, user := range s.m.users {
		if user.Token != nil && *user.Token == token {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (s *UserStore) Create(_ context.Context, user types.User) (types.User, error) {
	if s.m.CreateUserErr != nil {
		return types.User{}, s.m.CreateUserErr
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, existing := range s.m.users {
		if existing.Username == user.Username {
			return types.User{}, store.ErrConflict
		}
	}
	now := time.Now()
	user.ID = s.m.id()
	user.Token = nil
	user.CreatedAt = now
	user.UpdatedAt = now
	s.m.users[user.ID] = user
	return user, nil
}

func (s *UserStore) Update(_ context.Context, user types.User) (types.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	current, ok := s.m.users[user.ID]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	current.Name = user.Name
	current.PasswordHash = user.PasswordHash
	current.UpdatedAt = time.Now()
	s.m.users[user.ID] = current
	return current, nil
}

func (s *UserStore) SetToken(_ context.Context, id int64, token *string) error {
	if s.m.SetTokenErr != nil {
		return s.m.SetTokenErr
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	user, ok := s.m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	if token != nil {
		for otherID, other := range s.m.users {
			if otherID != id && other.Token != nil && *other.Token == *token {
				return store.ErrConflict
			}
		}
		value := *token
		token = &value
	}
	user.Token = token
	user.UpdatedAt = time.Now()
	s.m.users[id] = user
	return nil
}

// ContactStore implements services.ContactRepository.
type ContactStore struct{ m *Memory }

func (s *ContactStore) Create(_ context.Context, contact types.Contact) (types.Contact, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	now := time.Now()
	contact.ID = s.m.id()
	contact.CreatedAt = now
	contact.UpdatedAt = now
	s.m.contacts[contact.ID] = contact
	return contact, nil
}

func (s *ContactStore) ListByUser(_ context.Context, userID int64) ([]types.Contact, error) {
	if s.m.ListContactsErr != nil {
		return nil, s.m.ListContactsErr
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.m.filterContacts(userID, types.ContactFilter{}), nil
}

func (s *ContactStore) Get(_ context.Context, userID, id int64) (types.Contact, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	contact, ok := s.m.ownedContact(userID, id)
	if !ok {
		return types.Contact{}, store.ErrNotFound
	}
	return contact, nil
}

func (s *ContactStore) Update(_ context.Context, contact types.Contact) (types.Contact, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	current, ok := s.m.ownedContact(contact.UserID, contact.ID)
	if !ok {
		return types.Contact{}, store.ErrNotFound
	}
	contact.CreatedAt = current.CreatedAt
	contact.UpdatedAt = time.Now()
	s.m.contacts[contact.ID] = contact
	return contact, nil
}

func (s *ContactStore) Delete(_ context.Context, userID, id int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.ownedContact(userID, id); !ok {
		return store.ErrNotFound
	}
	delete(s.m.contacts, id)
	for addressID, address := range s.m.addresses {
		if address.ContactID == id {
			delete(s.m.addresses, addressID)
		}
	}
	return nil
}

func (s *ContactStore) Search(_ context.Context, userID int64, filter types.ContactFilter, offset, limit int) ([]types.Contact, int, error) {
	if s.m.SearchErr != nil {
		return nil, 0, s.m.SearchErr
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	matches := s.m.filterContacts(userID, filter)
	total := len(matches)
	if offset < 0 || offset >= total {
		return []types.Contact{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matches[offset:end], total, nil
}

func (m *Memory) filterContacts(userID int64, filter types.ContactFilter) []types.Contact {
	contacts := make([]types.Contact, 0)
	for _, contact := range m.contacts {
		if contact.UserID != userID {
			continue
		}
		if !containsFold(&contact.Name, filter.Name) ||
			!containsFold(contact.Email, filter.Email) ||
			!containsFold(contact.Phone, filter.Phone) {
			continue
		}
		contacts = append(contacts, contact)
	}
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].ID < contacts[j].ID })
	return contacts
}

func containsFold(value *string, substr string) bool {
	if substr == "" {
		return true
	}
	if value == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*value), strings.ToLower(substr))
}

// AddressStore implements services.AddressRepository.
type AddressStore struct{ m *Memory }

func (s *AddressStore) Create(_ context.Context, userID int64, address types.Address) (types.Address, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.ownedContact(userID, address.ContactID); !ok {
		return types.Address{}, store.ErrNotFound
	}
	now := time.Now()
	address.ID = s.m.id()
	address.CreatedAt = now
	address.UpdatedAt = now
	s.m.addresses[address.ID] = address
	return address, nil
}

func (s *AddressStore) List(_ context.Context, userID, contactID int64) ([]types.Address, error) {
	if s.m.ListAddressErr != nil {
		return nil, s.m.ListAddressErr
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.ownedContact(userID, contactID); !ok {
		return nil, store.ErrNotFound
	}
	addresses := make([]types.Address, 0)
	for _, address := range s.m.addresses {
		if address.ContactID == contactID {
			addresses = append(addresses, address)
		}
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i].ID < addresses[j].ID })
	return addresses, nil
}

func (s *AddressStore) Get(_ context.Context, userID, contactID, id int64) (types.Address, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.m.ownedAddress(userID, contactID, id)
}

func (s *AddressStore) Update(_ context.Context, userID int64, address types.Address) (types.Address, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	current, err := s.m.ownedAddress(userID, address.ContactID, address.ID)
	if err != nil {
		return types.Address{}, err
	}
	address.CreatedAt = current.CreatedAt
	address.UpdatedAt = time.Now()
	s.m.addresses[address.ID] = address
	return address, nil
}

func (s *AddressStore) Delete(_ context.Context, userID, contactID, id int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, err := s.m.ownedAddress(userID, contactID, id); err != nil {
		return err
	}
	delete(s.m.addresses, id)
	return nil
}

func (m *Memory) ownedAddress(userID, contactID, id int64) (types.Address, error) {
	if _, ok := m.ownedContact(userID, contactID); !ok {
		return types.Address{}, store.ErrNotFound
	}
	address, ok := m.addresses[id]
	if !ok || address.ContactID != contactID {
		return types.Address{}, store.ErrNotFound
	}
	return address, nil
}
