// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/contactbook/internal/contacts"
	"github.com/taibuivan/contactbook/internal/platform/dberr"
)

// memoryStore mirrors the Postgres store's semantics in memory.
type memoryStore struct {
	mu       sync.Mutex
	nextID   int64
	contacts map[int64]*contacts.Contact
	links    map[string]map[int64]bool
	searches []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		contacts: make(map[int64]*contacts.Contact),
		links:    make(map[string]map[int64]bool),
	}
}

func (s *memoryStore) linked(userID string) []*contacts.Contact {
	result := make([]*contacts.Contact, 0)
	for id := range s.links[userID] {
		clone := *s.contacts[id]
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *memoryStore) taken(input contacts.Input, except int64) bool {
	for id, contact := range s.contacts {
		if id == except {
			continue
		}
		if contact.Email == input.Email || contact.PhoneNumber == input.PhoneNumber {
			return true
		}
	}
	return false
}

func apply(contact *contacts.Contact, input contacts.Input) {
	contact.FirstName = input.FirstName
	contact.LastName = input.LastName
	contact.Email = input.Email
	contact.PhoneNumber = input.PhoneNumber
	contact.Notes = input.Notes
	contact.BirthDate = nil
	if input.BirthDate != nil {
		if birth, err := contacts.ParseDate(*input.BirthDate); err == nil {
			contact.BirthDate = &birth
		}
	}
	contact.UpdatedAt = time.Now()
}

func (s *memoryStore) List(_ context.Context, userID string, limit, offset int) ([]*contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.linked(userID)
	if offset >= len(all) {
		return []*contacts.Contact{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (s *memoryStore) Get(_ context.Context, userID string, id int64) (*contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.links[userID][id] {
		return nil, dberr.ErrNotFound
	}
	clone := *s.contacts[id]
	return &clone, nil
}

func (s *memoryStore) Create(_ context.Context, userID string, input contacts.Input) (*contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taken(input, 0) {
		return nil, dberr.ErrDuplicate
	}
	s.nextID++
	contact := &contacts.Contact{ID: s.nextID, CreatedAt: time.Now()}
	apply(contact, input)
	s.contacts[contact.ID] = contact
	s.link(userID, contact.ID)
	clone := *contact
	return &clone, nil
}

func (s *memoryStore) FindByPhone(_ context.Context, phone string) (*contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, contact := range s.contacts {
		if contact.PhoneNumber == phone {
			clone := *contact
			return &clone, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (s *memoryStore) link(userID string, contactID int64) bool {
	if s.links[userID] == nil {
		s.links[userID] = make(map[int64]bool)
	}
	if s.links[userID][contactID] {
		return false
	}
	s.links[userID][contactID] = true
	return true
}

func (s *memoryStore) Link(_ context.Context, userID string, contactID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.link(userID, contactID), nil
}

func (s *memoryStore) Update(_ context.Context, userID string, id int64, input contacts.Input) (*contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.links[userID][id] {
		return nil, dberr.ErrNotFound
	}
	if s.taken(input, id) {
		return nil, dberr.ErrDuplicate
	}
	apply(s.contacts[id], input)
	clone := *s.contacts[id]
	return &clone, nil
}

func (s *memoryStore) Delete(_ context.Context, userID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.links[userID][id] {
		return dberr.ErrNotFound
	}
	delete(s.contacts, id)
	for _, links := range s.links {
		delete(links, id)
	}
	return nil
}

func (s *memoryStore) SearchField(_ context.Context, userID, field, term string) ([]*contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches = append(s.searches, field)

	needle := strings.ToLower(term)
	result := make([]*contacts.Contact, 0)
	for _, contact := range s.linked(userID) {
		var value string
		switch field {
		case contacts.FieldFirstName:
			value = contact.FirstName
		case contacts.FieldLastName:
			value = contact.LastName
		case contacts.FieldEmail:
			value = contact.Email
		case contacts.FieldPhoneNumber:
			value = contact.PhoneNumber
		case contacts.FieldNotes:
			value = contact.Notes
		}
		if strings.Contains(strings.ToLower(value), needle) {
			result = append(result, contact)
		}
	}
	return result, nil
}

func (s *memoryStore) WithBirthDates(_ context.Context, userID string) ([]*contacts.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*contacts.Contact, 0)
	for _, contact := range s.linked(userID) {
		if contact.BirthDate != nil {
			result = append(result, contact)
		}
	}
	return result, nil
}

func (s *memoryStore) searchedFields() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.searches...)
}

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time { return time.Date(year, month, day, 10, 30, 0, 0, time.UTC) }
}

func ptr(value string) *string { return &value }

func sampleInput(first, email, phone string) contacts.Input {
	return contacts.Input{
		FirstName:   first,
		LastName:    "Kovalenko",
		Email:       email,
		PhoneNumber: phone,
		Notes:       "met at the conference",
	}.Normalize()
}
