// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
	"github.com/taibuivan/contactbook/internal/platform/respond"
)

/*
TestError_AppError renders the client-safe message and code.
*/
func TestError_AppError(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(recorder, request, apperr.Unauthorized("Could not validate credentials"))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "Bearer", recorder.Header().Get("WWW-Authenticate"))

	var body respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "Could not validate credentials", body.Error)
	assert.Equal(t, apperr.CodeUnauthorized, body.Code)
}

/*
TestError_PlainError hides unexpected errors behind a generic 500.
*/
func TestError_PlainError(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(recorder, request, errors.New("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "relation")
	assert.Empty(t, recorder.Header().Get("WWW-Authenticate"))
}

/*
TestMessage wraps outcome messages in the data envelope.
*/
func TestMessage(t *testing.T) {
	recorder := httptest.NewRecorder()

	respond.Message(recorder, "Email confirmed")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"message":"Email confirmed"}}`, recorder.Body.String())
}
