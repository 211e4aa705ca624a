// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/contactbook/internal/platform/constants"
	"github.com/taibuivan/contactbook/internal/platform/middleware"
	requestutil "github.com/taibuivan/contactbook/internal/platform/request"
	"github.com/taibuivan/contactbook/internal/platform/respond"
	"github.com/taibuivan/contactbook/internal/platform/sec"
	"github.com/taibuivan/contactbook/internal/platform/validate"
	"github.com/taibuivan/contactbook/internal/users/auth"
	"github.com/taibuivan/contactbook/pkg/pagination"
)

// # Definitions & Constructors

// Role allow-lists per operation.
var (
	readers = auth.NewRoleGate(sec.RoleAdmin, sec.RoleModerator, sec.RoleUser)
	editors = auth.NewRoleGate(sec.RoleAdmin, sec.RoleModerator)
	admins  = auth.NewRoleGate(sec.RoleAdmin)
)

// Handler implements the /api/contacts endpoints.
//
// # Security
//
// Every route expects [auth.Resolver.Middleware] to have run.
type Handler struct {
	contactService *Service
	limiter        *middleware.RateLimiter
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, limiter *middleware.RateLimiter) *Handler {
	return &Handler{contactService: service, limiter: limiter}
}

// Routes returns a [chi.Router] configured with contact routes.
//
// # Endpoints
//   - GET    /           : Lists contacts (all roles, 10/min).
//   - POST   /           : Creates a contact (all roles, 4/min).
//   - GET    /search     : Searches contacts (all roles, 10/min).
//   - GET    /birthdays  : Upcoming birthdays (all roles, 10/min).
//   - GET    /{id}       : Fetches a contact (all roles, 10/min).
//   - PUT    /{id}       : Replaces a contact (admin, moderator, 10/min).
//   - DELETE /{id}       : Deletes a contact (admin, 10/min).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	perMinute := handler.limiter.PerMinute

	router.With(readers.Middleware(), perMinute("contacts_list", constants.ReadsPerMinute)).Get("/", handler.list)
	router.With(readers.Middleware(), perMinute("contacts_create", constants.CreatesPerMinute)).Post("/", handler.create)
	router.With(readers.Middleware(), perMinute("contacts_search", constants.ReadsPerMinute)).Get("/search", handler.search)
	router.With(readers.Middleware(), perMinute("contacts_birthdays", constants.ReadsPerMinute)).Get("/birthdays", handler.birthdays)
	router.With(readers.Middleware(), perMinute("contacts_get", constants.ReadsPerMinute)).Get("/{id}", handler.get)
	router.With(editors.Middleware(), perMinute("contacts_update", constants.ReadsPerMinute)).Put("/{id}", handler.update)
	router.With(admins.Middleware(), perMinute("contacts_delete", constants.ReadsPerMinute)).Delete("/{id}", handler.delete)

	return router
}

/*
GET /api/contacts.

Request:
  - Query: limit (default 10, max 100), offset
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	identity, err := auth.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	contacts, err := handler.contactService.List(request.Context(), identity.ID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, contacts, pagination.NewMeta(params, len(contacts)))
}

// GET /api/contacts/{id}.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	identity, err := auth.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.IntID(request, FieldID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contact, err := handler.contactService.Get(request.Context(), identity.ID, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, contact)
}

/*
POST /api/contacts.

Response:
  - 201: Contact
  - 400: Validation failure
  - 409: "Such contact already exists"
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	identity, err := auth.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := handler.decodeInput(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contact, err := handler.contactService.Create(request.Context(), identity.ID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, contact)
}

// PUT /api/contacts/{id}.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	identity, err := auth.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.IntID(request, FieldID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := handler.decodeInput(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contact, err := handler.contactService.Update(request.Context(), identity.ID, id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, contact)
}

// DELETE /api/contacts/{id}.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	identity, err := auth.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.IntID(request, FieldID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.contactService.Delete(request.Context(), identity.ID, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// GET /api/contacts/search?parameter=term.
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	identity, err := auth.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	term := request.URL.Query().Get(FieldParameter)
	validator := &validate.Validator{}
	if err := validator.Required(FieldParameter, term).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	contacts, err := handler.contactService.Search(request.Context(), identity.ID, term)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, contacts)
}

// GET /api/contacts/birthdays.
func (handler *Handler) birthdays(writer http.ResponseWriter, request *http.Request) {
	identity, err := auth.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	contacts, err := handler.contactService.Birthdays(request.Context(), identity.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, contacts)
}

// # Helpers

func (handler *Handler) decodeInput(request *http.Request) (Input, error) {
	var input Input
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		return Input{}, validate.ErrInvalidJSON
	}

	input = input.Normalize()
	if err := input.Validate(handler.contactService.Today()); err != nil {
		return Input{}, err
	}
	return input, nil
}
