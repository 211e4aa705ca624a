// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/contactbook/internal/contacts"
	"github.com/taibuivan/contactbook/internal/platform/middleware"
	"github.com/taibuivan/contactbook/internal/platform/respond"
	"github.com/taibuivan/contactbook/internal/platform/sec"
	"github.com/taibuivan/contactbook/internal/users/auth"
)

type client struct {
	t       *testing.T
	handler http.Handler
}

func newClient(t *testing.T, store *memoryStore) *client {
	t.Helper()
	service := contacts.NewService(store, fixedClock(2026, time.March, 1))
	return &client{t: t, handler: contacts.NewHandler(service, middleware.NewRateLimiter()).Routes()}
}

func (c *client) do(role sec.Role, userID, method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	identity := &auth.Identity{ID: userID, Email: userID + "@x.com", Role: role, Confirmed: true}
	request = request.WithContext(auth.WithIdentity(request.Context(), identity))

	recorder := httptest.NewRecorder()
	c.handler.ServeHTTP(recorder, request)
	return recorder
}

func contactJSON(first, email, phone string) string {
	return fmt.Sprintf(`{"first_name":%q,"last_name":"Kovalenko","email":%q,"phone_number":%q,"birth_date":"1990-03-04","notes":"friend"}`,
		first, email, phone)
}

func errorOf(t *testing.T, recorder *httptest.ResponseRecorder) respond.ErrorEnvelope {
	t.Helper()
	var body respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func dataOf[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Data
}

/*
TestContacts_CRUD walks create, read, update, search and delete.
*/
func TestContacts_CRUD(t *testing.T) {
	c := newClient(t, newMemoryStore())

	recorder := c.do(sec.RoleUser, "alice", http.MethodPost, "/", contactJSON("Olena", "Olena@X.com", "+38 050 123 45 67"))
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	created := dataOf[contacts.Contact](t, recorder)
	assert.Equal(t, "olena@x.com", created.Email)
	assert.Equal(t, "+380501234567", created.PhoneNumber)
	require.NotNil(t, created.BirthDate)
	assert.Equal(t, "1990-03-04", created.BirthDate.Format("2006-01-02"))

	path := fmt.Sprintf("/%d", created.ID)

	recorder = c.do(sec.RoleUser, "alice", http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = c.do(sec.RoleUser, "alice", http.MethodGet, "/?limit=500", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"limit":100`)
	assert.Len(t, dataOf[[]contacts.Contact](t, recorder), 1)

	recorder = c.do(sec.RoleModerator, "alice", http.MethodPut, path, contactJSON("Oksana", "olena@x.com", "+380501234567"))
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Equal(t, "Oksana", dataOf[contacts.Contact](t, recorder).FirstName)

	recorder = c.do(sec.RoleUser, "alice", http.MethodGet, "/search?parameter=oksa", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Len(t, dataOf[[]contacts.Contact](t, recorder), 1)

	recorder = c.do(sec.RoleUser, "alice", http.MethodGet, "/birthdays", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = c.do(sec.RoleAdmin, "alice", http.MethodDelete, path, "")
	require.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = c.do(sec.RoleUser, "alice", http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "Not Found", errorOf(t, recorder).Error)
}

/*
TestContacts_RoleGates restricts update to editors and delete to admins.
*/
func TestContacts_RoleGates(t *testing.T) {
	c := newClient(t, newMemoryStore())

	recorder := c.do(sec.RoleUser, "alice", http.MethodPost, "/", contactJSON("Olena", "olena@x.com", "+380501234567"))
	require.Equal(t, http.StatusCreated, recorder.Code)
	path := fmt.Sprintf("/%d", dataOf[contacts.Contact](t, recorder).ID)

	recorder = c.do(sec.RoleUser, "alice", http.MethodPut, path, contactJSON("Oksana", "olena@x.com", "+380501234567"))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, "Operation forbidden", errorOf(t, recorder).Error)

	recorder = c.do(sec.RoleModerator, "alice", http.MethodDelete, path, "")
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = c.do(sec.RoleUser, "alice", http.MethodDelete, path, "")
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

/*
TestContacts_Errors maps validation, conflicts and missing rows.
*/
func TestContacts_Errors(t *testing.T) {
	c := newClient(t, newMemoryStore())

	recorder := c.do(sec.RoleUser, "alice", http.MethodPost, "/", contactJSON("Ol", "olena@x.com", "+380501234567"))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = c.do(sec.RoleUser, "alice", http.MethodPost, "/", `{"first_name":`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = c.do(sec.RoleUser, "alice", http.MethodPost, "/", contactJSON("Olena", "olena@x.com", "+380501234567"))
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = c.do(sec.RoleUser, "bob", http.MethodPost, "/", contactJSON("Olena", "olena@x.com", "+380501234567"))
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, "Such contact already exists", errorOf(t, recorder).Error)

	for _, path := range []string{"/999", "/abc", "/0"} {
		recorder = c.do(sec.RoleUser, "alice", http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, recorder.Code, path)
	}

	recorder = c.do(sec.RoleUser, "alice", http.MethodGet, "/search", "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = c.do(sec.RoleUser, "alice", http.MethodGet, "/search?parameter=zzz", "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

/*
TestContacts_RateLimits allows four creations and ten reads per minute.
*/
func TestContacts_RateLimits(t *testing.T) {
	c := newClient(t, newMemoryStore())

	for i := range 4 {
		body := contactJSON("Olena", fmt.Sprintf("o%d@x.com", i), fmt.Sprintf("+38050123456%d", i))
		recorder := c.do(sec.RoleUser, "alice", http.MethodPost, "/", body)
		require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	}
	recorder := c.do(sec.RoleUser, "alice", http.MethodPost, "/", contactJSON("Olena", "o9@x.com", "+380501234569"))
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("Retry-After"))

	for range 10 {
		require.Equal(t, http.StatusOK, c.do(sec.RoleUser, "alice", http.MethodGet, "/", "").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, c.do(sec.RoleUser, "alice", http.MethodGet, "/", "").Code)

	// Routes are budgeted separately.
	assert.Equal(t, http.StatusOK, c.do(sec.RoleUser, "alice", http.MethodGet, "/1", "").Code)
}

/*
TestContacts_Unauthenticated refuses requests without a resolved identity.
*/
func TestContacts_Unauthenticated(t *testing.T) {
	service := contacts.NewService(newMemoryStore(), nil)
	handler := contacts.NewHandler(service, middleware.NewRateLimiter()).Routes()

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
