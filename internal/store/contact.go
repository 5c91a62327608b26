package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jjudge-oj/contacts/types"
)

const contactColumns = `id, user_id, name, email, phone, created_at, updated_at`

var (
	getContactQuery = `SELECT ` + contactColumns + ` FROM contacts WHERE ` + ContactScope.Where()

	updateContactQuery = `
		UPDATE contacts
		SET name = $3,
			email = $4,
			phone = $5,
			updated_at = $6
		WHERE ` + ContactScope.Where()

	deleteContactQuery = `DELETE FROM contacts WHERE ` + ContactScope.Where()
)

// ContactRepository handles persistence for contacts. Every read and write
// is scoped to the owning user.
type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact types.Contact) (types.Contact, error) {
	now := time.Now()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	const query = `
		INSERT INTO contacts (user_id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		contact.UserID,
		contact.Name,
		nullString(contact.Email),
		nullString(contact.Phone),
		contact.CreatedAt,
		contact.UpdatedAt,
	).Scan(&contact.ID); err != nil {
		return types.Contact{}, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}

// ListByUser returns every contact owned by userID ordered by id.
func (r *ContactRepository) ListByUser(ctx context.Context, userID int64) ([]types.Contact, error) {
	const query = `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1 ORDER BY id`
	return r.list(ctx, query, userID)
}

// Get returns the contact only when it belongs to userID.
func (r *ContactRepository) Get(ctx context.Context, userID, id int64) (types.Contact, error) {
	contact, err := scanContact(r.db.QueryRowContext(ctx, getContactQuery, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Contact{}, ErrNotFound
		}
		return types.Contact{}, fmt.Errorf("get contact: %w", err)
	}
	return contact, nil
}

// Update overwrites name, email and phone of a contact owned by contact.UserID.
func (r *ContactRepository) Update(ctx context.Context, contact types.Contact) (types.Contact, error) {
	contact.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(
		ctx,
		updateContactQuery,
		contact.ID,
		contact.UserID,
		contact.Name,
		nullString(contact.Email),
		nullString(contact.Phone),
		contact.UpdatedAt,
	)
	if err != nil {
		return types.Contact{}, fmt.Errorf("update contact: %w", err)
	}
	if err := expectAffected(result); err != nil {
		return types.Contact{}, err
	}
	return contact, nil
}

// Delete removes a contact owned by userID. Its addresses go with it.
func (r *ContactRepository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx, deleteContactQuery, id, userID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return expectAffected(result)
}

// Search returns one page of userID's contacts matching filter, plus the
// total number of matches.
func (r *ContactRepository) Search(ctx context.Context, userID int64, filter types.ContactFilter, offset, limit int) ([]types.Contact, int, error) {
	if offset < 0 {
		return nil, 0, fmt.Errorf("search contacts: negative offset %d", offset)
	}
	if limit < 1 {
		limit = 10
	}

	where := []string{"user_id = $1"}
	args := []any{userID}
	addFilter := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, "%"+escapeLike(value)+"%")
		where = append(where, fmt.Sprintf("%s ILIKE $%d", column, len(args)))
	}
	addFilter("name", filter.Name)
	addFilter("email", filter.Email)
	addFilter("phone", filter.Phone)
	clause := strings.Join(where, " AND ")

	countQuery := `SELECT COUNT(1) FROM contacts WHERE ` + clause
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	listQuery := fmt.Sprintf(
		`SELECT %s FROM contacts WHERE %s ORDER BY id OFFSET $%d LIMIT $%d`,
		contactColumns, clause, len(args)+1, len(args)+2,
	)
	contacts, err := r.list(ctx, listQuery, append(args, offset, limit)...)
	if err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

func (r *ContactRepository) list(ctx context.Context, query string, args ...any) ([]types.Contact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]types.Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

func scanContact(row rowScanner) (types.Contact, error) {
	var contact types.Contact
	var email, phone sql.NullString
	if err := row.Scan(
		&contact.ID,
		&contact.UserID,
		&contact.Name,
		&email,
		&phone,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	); err != nil {
		return types.Contact{}, err
	}
	contact.Email = stringPtr(email)
	contact.Phone = stringPtr(phone)
	return contact, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
