package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jjudge-oj/contacts/types"
)

const addressColumns = `id, contact_id, street, city, province, country, postal_code, created_at, updated_at`

var (
	getAddressQuery = `SELECT ` + addressColumns + ` FROM addresses WHERE ` + AddressScope.Where()

	updateAddressQuery = `
		UPDATE addresses
		SET street = $3,
			city = $4,
			province = $5,
			country = $6,
			postal_code = $7,
			updated_at = $8
		WHERE ` + AddressScope.Where() + `
		RETURNING created_at`

	deleteAddressQuery = `DELETE FROM addresses WHERE ` + AddressScope.Where()
)

// AddressRepository handles persistence for addresses. Every operation first
// resolves the parent contact under the calling user, so an address is only
// reachable through a contact the caller owns.
type AddressRepository struct {
	db *sql.DB
}

func NewAddressRepository(db *sql.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

func contactStep(contactID int64) Step {
	return Step{Scope: ContactScope, ID: contactID}
}

// Create inserts address under address.ContactID. The parent contact is
// locked for the duration of the insert.
func (r *AddressRepository) Create(ctx context.Context, userID int64, address types.Address) (types.Address, error) {
	now := time.Now()
	address.CreatedAt = now
	address.UpdatedAt = now

	const query = `
		INSERT INTO addresses (contact_id, street, city, province, country, postal_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockPath(ctx, tx, userID, contactStep(address.ContactID)); err != nil {
			return err
		}
		if err := tx.QueryRowContext(
			ctx,
			query,
			address.ContactID,
			nullString(address.Street),
			nullString(address.City),
			nullString(address.Province),
			nullString(address.Country),
			nullString(address.PostalCode),
			address.CreatedAt,
			address.UpdatedAt,
		).Scan(&address.ID); err != nil {
			return fmt.Errorf("create address: %w", err)
		}
		return nil
	})
	if err != nil {
		return types.Address{}, err
	}
	return address, nil
}

// List returns the addresses of contactID ordered by id.
func (r *AddressRepository) List(ctx context.Context, userID, contactID int64) ([]types.Address, error) {
	if err := resolvePath(ctx, r.db, userID, contactStep(contactID)); err != nil {
		return nil, err
	}

	const query = `SELECT ` + addressColumns + ` FROM addresses WHERE contact_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, contactID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	addresses := make([]types.Address, 0)
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addresses = append(addresses, address)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addresses, nil
}

func (r *AddressRepository) Get(ctx context.Context, userID, contactID, id int64) (types.Address, error) {
	if err := resolvePath(ctx, r.db, userID, contactStep(contactID)); err != nil {
		return types.Address{}, err
	}

	address, err := scanAddress(r.db.QueryRowContext(ctx, getAddressQuery, id, contactID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Address{}, ErrNotFound
		}
		return types.Address{}, fmt.Errorf("get address: %w", err)
	}
	return address, nil
}

// Update replaces every location field of the address identified by
// address.ID under address.ContactID.
func (r *AddressRepository) Update(ctx context.Context, userID int64, address types.Address) (types.Address, error) {
	address.UpdatedAt = time.Now()

	err := inTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockPath(ctx, tx, userID, contactStep(address.ContactID)); err != nil {
			return err
		}
		err := tx.QueryRowContext(
			ctx,
			updateAddressQuery,
			address.ID,
			address.ContactID,
			nullString(address.Street),
			nullString(address.City),
			nullString(address.Province),
			nullString(address.Country),
			nullString(address.PostalCode),
			address.UpdatedAt,
		).Scan(&address.CreatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("update address: %w", err)
		}
		return nil
	})
	if err != nil {
		return types.Address{}, err
	}
	return address, nil
}

func (r *AddressRepository) Delete(ctx context.Context, userID, contactID, id int64) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockPath(ctx, tx, userID, contactStep(contactID)); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, deleteAddressQuery, id, contactID)
		if err != nil {
			return fmt.Errorf("delete address: %w", err)
		}
		return expectAffected(result)
	})
}

func scanAddress(row rowScanner) (types.Address, error) {
	var address types.Address
	var street, city, province, country, postalCode sql.NullString
	if err := row.Scan(
		&address.ID,
		&address.ContactID,
		&street,
		&city,
		&province,
		&country,
		&postalCode,
		&address.CreatedAt,
		&address.UpdatedAt,
	); err != nil {
		return types.Address{}, err
	}
	address.Street = stringPtr(street)
	address.City = stringPtr(city)
	address.Province = stringPtr(province)
	address.Country = stringPtr(country)
	address.PostalCode = stringPtr(postalCode)
	return address, nil
}
