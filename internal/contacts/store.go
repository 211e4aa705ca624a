// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts

import "context"

// # Repository Contracts

// Store defines the persistence contract for contacts.
//
// Every method taking a userID only sees contacts linked to that user.
// Missing rows are reported as dberr.ErrNotFound and unique violations as a
// CONFLICT [apperr.AppError].
type Store interface {
	// List returns a window of the user's contacts ordered by id.
	List(context context.Context, userID string, limit, offset int) ([]*Contact, error)

	// Get returns a single linked contact.
	Get(context context.Context, userID string, id int64) (*Contact, error)

	// Create inserts a contact and links it to userID in one transaction.
	Create(context context.Context, userID string, input Input) (*Contact, error)

	// FindByPhone returns the contact owning phone regardless of links.
	FindByPhone(context context.Context, phone string) (*Contact, error)

	// Link associates an existing contact with userID. It reports whether a
	// new link was created.
	Link(context context.Context, userID string, contactID int64) (bool, error)

	// Update replaces every writable field of a linked contact.
	Update(context context.Context, userID string, id int64, input Input) (*Contact, error)

	// Delete removes a linked contact.
	Delete(context context.Context, userID string, id int64) error

	// SearchField returns linked contacts whose field contains term, case-insensitively.
	// field must be one of [SearchFields].
	SearchField(context context.Context, userID, field, term string) ([]*Contact, error)

	// WithBirthDates returns every linked contact that has a birth date.
	WithBirthDates(context context.Context, userID string) ([]*Contact, error)
}
