// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package contacts manages the per-user address book.

Contacts are shared rows linked to users many-to-many: creating a contact whose
phone number or email already exists links the existing row to the caller
instead of duplicating it. Every read and write is scoped to the contacts
linked to the caller.

# Architecture

  - Entity: Contact, Input.
  - Store: Postgres persistence (contacts, users_contacts).
  - Service: Merge-or-report creation, field-by-field search, birthdays.
  - Handler: HTTP transport under /api/contacts, gated by role and rate.
*/
package contacts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/contactbook/internal/platform/validate"
)

// # Domain Entities

// Contact is a single address book entry.
type Contact struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	BirthDate   *Date     `json:"birth_date"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a [validate.DateLayout] string.
func ParseDate(value string) (Date, error) {
	parsed, err := time.Parse(validate.DateLayout, value)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: parsed}, nil
}

// MarshalJSON implements [json.Marshaler].
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(validate.DateLayout))
}

// UnmarshalJSON implements [json.Unmarshaler].
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("contacts: date must be a string: %w", err)
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return fmt.Errorf("contacts: invalid date %q: %w", raw, err)
	}
	*d = parsed
	return nil
}

// # Input

// Input carries the writable fields of a contact.
type Input struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phone_number"`
	BirthDate   *string `json:"birth_date"`
	Notes       string  `json:"notes"`
}

// Normalize trims every field, composes text to NFC, lowercases the email and
// strips separators from the phone number.
func (input Input) Normalize() Input {
	input.FirstName = normalizeText(input.FirstName)
	input.LastName = normalizeText(input.LastName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.PhoneNumber = validate.NormalizePhone(input.PhoneNumber)
	input.Notes = normalizeText(input.Notes)
	if input.BirthDate != nil {
		trimmed := strings.TrimSpace(*input.BirthDate)
		if trimmed == "" {
			input.BirthDate = nil
		} else {
			input.BirthDate = &trimmed
		}
	}
	return input
}

/*
Validate checks a normalized input.

Parameters:
  - today: time.Time (birth dates after this day are rejected)

Returns:
  - error: VALIDATION_ERROR with per-field details, or nil
*/
func (input Input) Validate(today time.Time) error {
	validator := &validate.Validator{}
	validator.Length(FieldFirstName, input.FirstName, FirstNameMinLen, FirstNameMaxLen).
		Length(FieldLastName, input.LastName, LastNameMinLen, LastNameMaxLen).
		Email(FieldEmail, input.Email).
		Phone(FieldPhoneNumber, input.PhoneNumber).
		MaxLen(FieldNotes, input.Notes, NotesMaxLen)

	if input.BirthDate != nil {
		birth, err := ParseDate(*input.BirthDate)
		if err != nil {
			validator.Date(FieldBirthDate, *input.BirthDate)
		} else {
			validator.Custom(FieldBirthDate, birth.After(today), "Must not be in the future")
		}
	}

	return validator.Err()
}

// birthDate returns the parsed birth date of a validated input.
func (input Input) birthDate() *Date {
	if input.BirthDate == nil {
		return nil
	}
	birth, err := ParseDate(*input.BirthDate)
	if err != nil {
		return nil
	}
	return &birth
}

func normalizeText(value string) string {
	return norm.NFC.String(strings.TrimSpace(value))
}

// # Constraints

const (
	FirstNameMinLen = 3
	FirstNameMaxLen = 25
	LastNameMinLen  = 4
	LastNameMaxLen  = 30
	NotesMaxLen     = 2000

	// BirthdayWindowDays is the number of days, today included, scanned for birthdays.
	BirthdayWindowDays = 7
)

// Client-facing messages.
const (
	MsgNotFound      = "Not Found"
	MsgContactExists = "Such contact already exists"
)

// # Field Identifiers

const (
	FieldID          = "id"
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldEmail       = "email"
	FieldPhoneNumber = "phone_number"
	FieldBirthDate   = "birth_date"
	FieldNotes       = "notes"
	FieldParameter   = "parameter"
)

// SearchFields lists, in result order, the columns matched by search.
var SearchFields = []string{FieldFirstName, FieldLastName, FieldEmail, FieldPhoneNumber, FieldNotes}
