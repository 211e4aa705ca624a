// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
	"github.com/taibuivan/contactbook/internal/platform/respond"
	"github.com/taibuivan/contactbook/internal/users/auth"
)

// Handler implements the /api/users endpoints.
//
// # Security
//
// Every route expects [auth.Resolver.Middleware] to have run.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/me", handler.getMe)
	router.Patch("/avatar", handler.updateAvatar)

	return router
}

/*
GET /api/users/me.

Description: Returns the profile of the authenticated user.

Response:
  - 200: Identity
  - 401: Not authenticated
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	identity, err := auth.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, identity)
}

/*
PATCH /api/users/avatar.

Description: Replaces the avatar with the multipart "file" upload.

Response:
  - 200: Identity with the new avatar URL
  - 400: Missing or undecodable file
  - 503: No avatar storage configured
*/
func (handler *Handler) updateAvatar(writer http.ResponseWriter, request *http.Request) {
	identity, err := auth.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, MaxAvatarBytes)
	file, _, err := request.FormFile(FieldFile)
	if err != nil {
		respond.Error(writer, request, apperr.BadRequest(MsgInvalidImage).WithCause(err))
		return
	}
	defer file.Close()

	updated, err := handler.accountService.UpdateAvatar(request.Context(), identity, file)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}
