package services

import (
	"context"
	"math"

	"github.com/jjudge-oj/contacts/internal/logging"
	"github.com/jjudge-oj/contacts/types"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*MaxPageSize within a 32-bit int.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// ContactRepository defines persistence operations for contacts. Every method
// is scoped to the owning user.
type ContactRepository interface {
	Create(ctx context.Context, contact types.Contact) (types.Contact, error)
	ListByUser(ctx context.Context, userID int64) ([]types.Contact, error)
	Get(ctx context.Context, userID, id int64) (types.Contact, error)
	Update(ctx context.Context, contact types.Contact) (types.Contact, error)
	Delete(ctx context.Context, userID, id int64) error
	Search(ctx context.Context, userID int64, filter types.ContactFilter, offset, limit int) ([]types.Contact, int, error)
}

// ContactPatch carries a contact update. Nil and empty fields are skipped,
// so a contact's name can never be blanked through an update.
type ContactPatch struct {
	Name  *string
	Email *string
	Phone *string
}

// ContactService encapsulates contact use-cases.
type ContactService struct {
	repo   ContactRepository
	events *Events
}

func NewContactService(repo ContactRepository, events *Events) *ContactService {
	return &ContactService{repo: repo, events: events}
}

func (s *ContactService) Create(ctx context.Context, userID int64, contact types.Contact) (types.Contact, error) {
	contact.ID = 0
	contact.UserID = userID

	created, err := s.repo.Create(ctx, contact)
	if err != nil {
		return types.Contact{}, err
	}

	logging.FromContext(ctx).
		WithField("contact_id", created.ID).
		WithField("user_id", userID).
		Info("contact created")
	s.events.emit(ctx, types.Event{Type: types.EventContactCreated, UserID: userID, ContactID: created.ID})
	return created, nil
}

func (s *ContactService) List(ctx context.Context, userID int64) ([]types.Contact, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *ContactService) Get(ctx context.Context, userID, id int64) (types.Contact, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *ContactService) Update(ctx context.Context, userID, id int64, patch ContactPatch) (types.Contact, error) {
	contact, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return types.Contact{}, err
	}

	if patch.Name != nil && *patch.Name != "" {
		contact.Name = *patch.Name
	}
	if patch.Email != nil && *patch.Email != "" {
		contact.Email = patch.Email
	}
	if patch.Phone != nil && *patch.Phone != "" {
		contact.Phone = patch.Phone
	}

	updated, err := s.repo.Update(ctx, contact)
	if err != nil {
		return types.Contact{}, err
	}

	logging.FromContext(ctx).
		WithField("contact_id", id).
		WithField("user_id", userID).
		Info("contact updated")
	s.events.emit(ctx, types.Event{Type: types.EventContactUpdated, UserID: userID, ContactID: id})
	return updated, nil
}

func (s *ContactService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	logging.FromContext(ctx).
		WithField("contact_id", id).
		WithField("user_id", userID).
		Info("contact deleted")
	s.events.emit(ctx, types.Event{Type: types.EventContactDeleted, UserID: userID, ContactID: id})
	return nil
}

// Search returns one page of the user's contacts matching filter. Page
// numbers start at 1 and stop at MaxPage; size is clamped to MaxPageSize.
func (s *ContactService) Search(ctx context.Context, userID int64, filter types.ContactFilter, page, size int) (types.ContactPage, error) {
	if page > MaxPage {
		return types.ContactPage{}, ErrPageOutOfRange
	}
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	items, total, err := s.repo.Search(ctx, userID, filter, (page-1)*size, size)
	if err != nil {
		return types.ContactPage{}, err
	}

	return types.ContactPage{
		Items:      items,
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
	}, nil
}
