// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
	"github.com/taibuivan/contactbook/internal/platform/ctxutil"
	"github.com/taibuivan/contactbook/pkg/pagination"
)

// # Service Layer

// Service implements the address book operations on behalf of one user.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a new [Service]. A nil now selects time.Now.
func NewService(store Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now}
}

// Today returns the current calendar date.
func (service *Service) Today() time.Time {
	return calendarDay(service.now())
}

func errNotFound() error {
	return apperr.NotFoundMsg(MsgNotFound)
}

// notFoundOr maps store NOT_FOUND errors to the client-facing 404.
func notFoundOr(err error, action string) error {
	if apperr.IsNotFound(err) {
		return errNotFound()
	}
	return fmt.Errorf("contact_service_%s_failed: %w", action, err)
}

// List returns a page of the user's contacts.
func (service *Service) List(context context.Context, userID string, params pagination.Params) ([]*Contact, error) {
	contacts, err := service.store.List(context, userID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("contact_service_list_failed: %w", err)
	}
	return contacts, nil
}

// Get returns one contact linked to the user, or 404 "Not Found".
func (service *Service) Get(context context.Context, userID string, id int64) (*Contact, error) {
	contact, err := service.store.Get(context, userID, id)
	if err != nil {
		return nil, notFoundOr(err, "get")
	}
	return contact, nil
}

/*
Create stores a new contact for the user.

Description: When the email or phone number already belongs to a contact, that
contact is linked to the user instead (if it is not already) and the call is
reported as 409 "Such contact already exists".

Parameters:
  - context: context.Context
  - userID: string
  - input: Input (normalized and validated)

Returns:
  - *Contact: The created contact
  - error: 409 on an existing contact, or storage errors
*/
func (service *Service) Create(context context.Context, userID string, input Input) (*Contact, error) {
	logger := ctxutil.GetLogger(context)

	contact, err := service.store.Create(context, userID, input)
	if err == nil {
		logger.InfoContext(context, "contact_created", slog.Int64("contact_id", contact.ID))
		return contact, nil
	}
	if !apperr.IsConflict(err) {
		return nil, fmt.Errorf("contact_service_create_failed: %w", err)
	}

	// Only a shared phone number merges; an email clash alone is reported.
	existing, err := service.store.FindByPhone(context, input.PhoneNumber)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Conflict(MsgContactExists)
		}
		return nil, fmt.Errorf("contact_service_find_existing_failed: %w", err)
	}

	linked, err := service.store.Link(context, userID, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("contact_service_link_failed: %w", err)
	}
	if linked {
		logger.InfoContext(context, "contact_linked_existing", slog.Int64("contact_id", existing.ID))
	}

	return nil, apperr.Conflict(MsgContactExists)
}

// Update replaces a linked contact. A taken email or phone number is a 409.
func (service *Service) Update(context context.Context, userID string, id int64, input Input) (*Contact, error) {
	contact, err := service.store.Update(context, userID, id, input)
	if err != nil {
		if apperr.IsConflict(err) {
			return nil, apperr.Conflict(MsgContactExists)
		}
		return nil, notFoundOr(err, "update")
	}

	ctxutil.GetLogger(context).InfoContext(context, "contact_updated", slog.Int64("contact_id", id))
	return contact, nil
}

// Delete removes a linked contact.
func (service *Service) Delete(context context.Context, userID string, id int64) error {
	if err := service.store.Delete(context, userID, id); err != nil {
		return notFoundOr(err, "delete")
	}

	ctxutil.GetLogger(context).InfoContext(context, "contact_deleted", slog.Int64("contact_id", id))
	return nil
}

/*
Search matches term against each of [SearchFields] in turn.

Description: Runs one query per field and unions the results in field order,
keeping the first occurrence of each contact.

Returns:
  - []*Contact: At least one contact
  - error: 404 "Not Found" when nothing matches
*/
func (service *Service) Search(context context.Context, userID, term string) ([]*Contact, error) {
	term = normalizeText(term)

	seen := make(map[int64]struct{})
	result := make([]*Contact, 0)

	for _, field := range SearchFields {
		matches, err := service.store.SearchField(context, userID, field, term)
		if err != nil {
			return nil, fmt.Errorf("contact_service_search_%s_failed: %w", field, err)
		}

		for _, contact := range matches {
			if _, dup := seen[contact.ID]; dup {
				continue
			}
			seen[contact.ID] = struct{}{}
			result = append(result, contact)
		}
	}

	if len(result) == 0 {
		return nil, errNotFound()
	}
	return result, nil
}

// Birthdays returns contacts with a birthday in the next [BirthdayWindowDays]
// days, today included, or 404 "Not Found".
func (service *Service) Birthdays(context context.Context, userID string) ([]*Contact, error) {
	candidates, err := service.store.WithBirthDates(context, userID)
	if err != nil {
		return nil, fmt.Errorf("contact_service_birthdays_failed: %w", err)
	}

	upcoming := UpcomingBirthdays(candidates, service.Today(), BirthdayWindowDays)
	if len(upcoming) == 0 {
		return nil, errNotFound()
	}
	return upcoming, nil
}
