// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/contactbook/internal/platform/dberr"
)

// # Contact Repository

// PostgresStore implements [Store] using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of [Store].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const contactColumns = `c.id, c.first_name, c.last_name, c.email, c.phone_number, c.birth_date, c.notes, c.created_at, c.updated_at`

const linkedContacts = `FROM contacts c JOIN users_contacts uc ON uc.contact_id = c.id WHERE uc.user_id = $1`

// searchColumns maps searchable fields to their column. Only these names are
// ever interpolated into SQL.
var searchColumns = map[string]string{
	FieldFirstName:   "c.first_name",
	FieldLastName:    "c.last_name",
	FieldEmail:       "c.email",
	FieldPhoneNumber: "c.phone_number",
	FieldNotes:       "c.notes",
}

func scanContact(row pgx.Row) (*Contact, error) {
	contact := &Contact{}
	var birthDate *time.Time

	err := row.Scan(
		&contact.ID,
		&contact.FirstName,
		&contact.LastName,
		&contact.Email,
		&contact.PhoneNumber,
		&birthDate,
		&contact.Notes,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if birthDate != nil {
		contact.BirthDate = &Date{Time: *birthDate}
	}
	return contact, nil
}

func collectContacts(rows pgx.Rows, action string) ([]*Contact, error) {
	defer rows.Close()

	result := make([]*Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, dberr.Wrap(err, action+"_scan")
		}
		result = append(result, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return result, nil
}

func birthDateArg(input Input) any {
	if birth := input.birthDate(); birth != nil {
		return birth.Time
	}
	return nil
}

/*
List returns a window of the user's contacts.

Parameters:
  - context: context.Context
  - userID: string
  - limit, offset: int

Returns:
  - []*Contact: Possibly empty page
  - error: Database errors
*/
func (repository *PostgresStore) List(context context.Context, userID string, limit, offset int) ([]*Contact, error) {
	query := `SELECT ` + contactColumns + ` ` + linkedContacts + ` ORDER BY c.id LIMIT $2 OFFSET $3`

	rows, err := repository.pool.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_contact_list")
	}
	return collectContacts(rows, "postgres_contact_list")
}

// Get implements [Store].
func (repository *PostgresStore) Get(context context.Context, userID string, id int64) (*Contact, error) {
	query := `SELECT ` + contactColumns + ` ` + linkedContacts + ` AND c.id = $2`

	contact, err := scanContact(repository.pool.QueryRow(context, query, userID, id))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_contact_get")
	}
	return contact, nil
}

/*
Create inserts a contact and its link to userID atomically.

Returns:
  - *Contact: The stored row
  - error: CONFLICT on a taken email or phone number, or database errors
*/
func (repository *PostgresStore) Create(context context.Context, userID string, input Input) (*Contact, error) {
	var contact *Contact

	err := pgx.BeginFunc(context, repository.pool, func(tx pgx.Tx) error {
		insert := `
			INSERT INTO contacts AS c (first_name, last_name, email, phone_number, birth_date, notes)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING ` + contactColumns

		created, err := scanContact(tx.QueryRow(context, insert,
			input.FirstName, input.LastName, input.Email, input.PhoneNumber, birthDateArg(input), input.Notes,
		))
		if err != nil {
			return err
		}

		if _, err := tx.Exec(context, `INSERT INTO users_contacts (user_id, contact_id) VALUES ($1, $2)`, userID, created.ID); err != nil {
			return err
		}

		contact = created
		return nil
	})
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_contact_create")
	}
	return contact, nil
}

// FindByPhone implements [Store].
func (repository *PostgresStore) FindByPhone(context context.Context, phone string) (*Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts c
		WHERE c.phone_number = $1`

	contact, err := scanContact(repository.pool.QueryRow(context, query, phone))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_contact_find_existing")
	}
	return contact, nil
}

// Link implements [Store].
func (repository *PostgresStore) Link(context context.Context, userID string, contactID int64) (bool, error) {
	tag, err := repository.pool.Exec(context,
		`INSERT INTO users_contacts (user_id, contact_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, contactID,
	)
	if err != nil {
		return false, dberr.Wrap(err, "postgres_contact_link")
	}
	return tag.RowsAffected() == 1, nil
}

// Update implements [Store].
func (repository *PostgresStore) Update(context context.Context, userID string, id int64, input Input) (*Contact, error) {
	query := `
		UPDATE contacts AS c
		SET first_name = $3, last_name = $4, email = $5, phone_number = $6,
		    birth_date = $7, notes = $8, updated_at = NOW()
		FROM users_contacts uc
		WHERE uc.contact_id = c.id AND uc.user_id = $1 AND c.id = $2
		RETURNING ` + contactColumns

	contact, err := scanContact(repository.pool.QueryRow(context, query,
		userID, id,
		input.FirstName, input.LastName, input.Email, input.PhoneNumber, birthDateArg(input), input.Notes,
	))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_contact_update")
	}
	return contact, nil
}

// Delete implements [Store]. The contact row goes for every linked user.
func (repository *PostgresStore) Delete(context context.Context, userID string, id int64) error {
	tag, err := repository.pool.Exec(context, `
		DELETE FROM contacts c
		USING users_contacts uc
		WHERE uc.contact_id = c.id AND uc.user_id = $1 AND c.id = $2`,
		userID, id,
	)
	if err != nil {
		return dberr.Wrap(err, "postgres_contact_delete")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// SearchField implements [Store] with one parameterized ILIKE query.
func (repository *PostgresStore) SearchField(context context.Context, userID, field, term string) ([]*Contact, error) {
	column, ok := searchColumns[field]
	if !ok {
		return nil, fmt.Errorf("postgres_contact_search: unsupported field %q", field)
	}

	query := `SELECT ` + contactColumns + ` ` + linkedContacts + ` AND ` + column + ` ILIKE $2 ESCAPE '\' ORDER BY c.id`

	rows, err := repository.pool.Query(context, query, userID, likePattern(term))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_contact_search")
	}
	return collectContacts(rows, "postgres_contact_search")
}

// WithBirthDates implements [Store].
func (repository *PostgresStore) WithBirthDates(context context.Context, userID string) ([]*Contact, error) {
	query := `SELECT ` + contactColumns + ` ` + linkedContacts + ` AND c.birth_date IS NOT NULL ORDER BY c.id`

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_contact_birthdays")
	}
	return collectContacts(rows, "postgres_contact_birthdays")
}

// likePattern wraps term in wildcards, matching its own wildcard characters literally.
func likePattern(term string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(term) + "%"
}
