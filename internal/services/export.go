package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jjudge-oj/contacts/internal/logging"
	"github.com/jjudge-oj/contacts/internal/storage"
	"github.com/jjudge-oj/contacts/internal/store"
	"github.com/jjudge-oj/contacts/types"
)

// ObjectStore is the subset of object storage used for exports.
type ObjectStore interface {
	PutJSON(ctx context.Context, key string, v any) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ExportService writes JSON snapshots of a user's contacts, with their
// addresses, to object storage. Keys are derived from the owner's id, so an
// export is only reachable by the user who created it.
type ExportService struct {
	contacts  ContactRepository
	addresses AddressRepository
	objects   ObjectStore
	now       func() time.Time
}

// NewExportService constructs an ExportService. A nil objects disables
// exports; every method then returns ErrExportsDisabled.
func NewExportService(contacts ContactRepository, addresses AddressRepository, objects ObjectStore) *ExportService {
	return &ExportService{
		contacts:  contacts,
		addresses: addresses,
		objects:   objects,
		now:       time.Now,
	}
}

// Enabled reports whether an object store is configured.
func (s *ExportService) Enabled() bool {
	return s.objects != nil
}

func (s *ExportService) Create(ctx context.Context, userID int64) (types.Export, error) {
	if !s.Enabled() {
		return types.Export{}, ErrExportsDisabled
	}

	contacts, err := s.contacts.ListByUser(ctx, userID)
	if err != nil {
		return types.Export{}, err
	}

	doc := types.ExportDocument{
		UserID:      userID,
		GeneratedAt: s.now().UTC(),
		Contacts:    make([]types.ExportContact, 0, len(contacts)),
	}
	for _, contact := range contacts {
		addresses, err := s.addresses.List(ctx, userID, contact.ID)
		if err != nil {
			// Deleted after the listing above.
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return types.Export{}, err
		}
		doc.Contacts = append(doc.Contacts, types.ExportContact{Contact: contact, Addresses: addresses})
	}

	export := types.Export{
		ID:        uuid.NewString(),
		Contacts:  len(doc.Contacts),
		CreatedAt: doc.GeneratedAt,
	}
	export.Key = exportKey(userID, export.ID)

	if err := s.objects.PutJSON(ctx, export.Key, doc); err != nil {
		return types.Export{}, fmt.Errorf("store export: %w", err)
	}

	logging.FromContext(ctx).
		WithField("export_id", export.ID).
		WithField("user_id", userID).
		WithField("contacts", export.Contacts).
		Info("contact export created")
	return export, nil
}

// Open returns the stored document of export id. The caller must close it.
func (s *ExportService) Open(ctx context.Context, userID int64, id string) (io.ReadCloser, error) {
	key, err := s.resolve(userID, id)
	if err != nil {
		return nil, err
	}
	rc, err := s.objects.Get(ctx, key)
	if err != nil {
		return nil, mapObjectError(err)
	}
	return rc, nil
}

func (s *ExportService) Delete(ctx context.Context, userID int64, id string) error {
	key, err := s.resolve(userID, id)
	if err != nil {
		return err
	}
	if err := s.objects.Delete(ctx, key); err != nil {
		return mapObjectError(err)
	}

	logging.FromContext(ctx).
		WithField("export_id", id).
		WithField("user_id", userID).
		Info("contact export deleted")
	return nil
}

func (s *ExportService) resolve(userID int64, id string) (string, error) {
	if !s.Enabled() {
		return "", ErrExportsDisabled
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", store.ErrNotFound
	}
	return exportKey(userID, parsed.String()), nil
}

func exportKey(userID int64, id string) string {
	return fmt.Sprintf("exports/%d/%s.json", userID, id)
}

func mapObjectError(err error) error {
	if errors.Is(err, storage.ErrObjectNotFound) {
		return store.ErrNotFound
	}
	return err
}
