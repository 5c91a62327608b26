package services

import (
	"context"

	"github.com/jjudge-oj/contacts/internal/logging"
	"github.com/jjudge-oj/contacts/types"
)

// AddressRepository defines persistence operations for addresses. Every
// method resolves the parent contact under userID first.
type AddressRepository interface {
	Create(ctx context.Context, userID int64, address types.Address) (types.Address, error)
	List(ctx context.Context, userID, contactID int64) ([]types.Address, error)
	Get(ctx context.Context, userID, contactID, id int64) (types.Address, error)
	Update(ctx context.Context, userID int64, address types.Address) (types.Address, error)
	Delete(ctx context.Context, userID, contactID, id int64) error
}

// AddressService encapsulates address use-cases.
type AddressService struct {
	repo   AddressRepository
	events *Events
}

func NewAddressService(repo AddressRepository, events *Events) *AddressService {
	return &AddressService{repo: repo, events: events}
}

func (s *AddressService) Create(ctx context.Context, userID, contactID int64, address types.Address) (types.Address, error) {
	address.ID = 0
	address.ContactID = contactID

	created, err := s.repo.Create(ctx, userID, address)
	if err != nil {
		return types.Address{}, err
	}

	s.logAndEmit(ctx, types.EventAddressCreated, userID, created)
	return created, nil
}

func (s *AddressService) List(ctx context.Context, userID, contactID int64) ([]types.Address, error) {
	return s.repo.List(ctx, userID, contactID)
}

func (s *AddressService) Get(ctx context.Context, userID, contactID, id int64) (types.Address, error) {
	return s.repo.Get(ctx, userID, contactID, id)
}

// Update replaces every location field of the address with the values in
// address, including nil ones.
func (s *AddressService) Update(ctx context.Context, userID, contactID, id int64, address types.Address) (types.Address, error) {
	address.ID = id
	address.ContactID = contactID

	updated, err := s.repo.Update(ctx, userID, address)
	if err != nil {
		return types.Address{}, err
	}

	s.logAndEmit(ctx, types.EventAddressUpdated, userID, updated)
	return updated, nil
}

func (s *AddressService) Delete(ctx context.Context, userID, contactID, id int64) error {
	if err := s.repo.Delete(ctx, userID, contactID, id); err != nil {
		return err
	}

	s.logAndEmit(ctx, types.EventAddressDeleted, userID, types.Address{ID: id, ContactID: contactID})
	return nil
}

func (s *AddressService) logAndEmit(ctx context.Context, eventType types.EventType, userID int64, address types.Address) {
	logging.FromContext(ctx).
		WithField("address_id", address.ID).
		WithField("contact_id", address.ContactID).
		WithField("user_id", userID).
		Info(string(eventType))
	s.events.emit(ctx, types.Event{
		Type:      eventType,
		UserID:    userID,
		ContactID: address.ContactID,
		AddressID: address.ID,
	})
}
