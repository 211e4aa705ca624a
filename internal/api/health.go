// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
	"github.com/taibuivan/contactbook/internal/platform/constants"
	"github.com/taibuivan/contactbook/internal/platform/respond"
)

// Health messages.
const (
	MsgDatabaseHealthy = "Database is healthy"
	MsgDatabaseError   = "Error connecting to the database"
	MsgWelcome         = "Contactbook API"
)

// HealthDependencies holds the injectable dependency checkers for the health endpoints.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase func(context.Context) error

	// QueryDatabase runs SELECT 1 for /api/healthchecker.
	QueryDatabase func(context.Context) error

	// CheckCache pings the identity cache backend. Nil when it is in-process.
	CheckCache func(context.Context) error
}

// HealthHandlers serves the unauthenticated probe endpoints.
type HealthHandlers struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

// NewHealthHandlers creates the probe handlers.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) *HealthHandlers {
	return &HealthHandlers{dependencies: deps, logger: logger}
}

// Liveness handles GET /health.
func (handler *HealthHandlers) Liveness(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
}

// Root handles GET /.
func (handler *HealthHandlers) Root(writer http.ResponseWriter, _ *http.Request) {
	respond.Message(writer, MsgWelcome)
}

/*
HealthChecker handles GET /api/healthchecker.

Response:
  - 200: "Database is healthy"
  - 500: "Error connecting to the database"
*/
func (handler *HealthHandlers) HealthChecker(writer http.ResponseWriter, request *http.Request) {
	if handler.dependencies.QueryDatabase != nil {
		if err := handler.dependencies.QueryDatabase(request.Context()); err != nil {
			handler.logger.ErrorContext(request.Context(), "healthchecker_database_failed", slog.Any("error", err))
			respond.JSON(writer, http.StatusInternalServerError, respond.ErrorEnvelope{
				Error: MsgDatabaseError,
				Code:  apperr.CodeInternal,
			})
			return
		}
	}

	respond.Message(writer, MsgDatabaseHealthy)
}

// Readiness handles GET /ready. Any failing dependency yields 503.
func (handler *HealthHandlers) Readiness(writer http.ResponseWriter, request *http.Request) {
	type checkResult struct {
		Name  string `json:"name"`
		IsOK  bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}

	checks := []struct {
		name  string
		check func(context.Context) error
	}{
		{"postgres", handler.dependencies.CheckDatabase},
		{"redis", handler.dependencies.CheckCache},
	}

	results := make([]checkResult, 0, len(checks))
	isSystemReady := true

	for _, dependency := range checks {
		if dependency.check == nil {
			continue
		}
		result := checkResult{Name: dependency.name, IsOK: true}
		if err := dependency.check(request.Context()); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			isSystemReady = false
			handler.logger.ErrorContext(request.Context(), "readiness_check_failed",
				slog.String("dependency", dependency.name),
				slog.Any("error", err),
			)
		}
		results = append(results, result)
	}

	responseStatus, httpStatus := "ready", http.StatusOK
	if !isSystemReady {
		responseStatus, httpStatus = "degraded", http.StatusServiceUnavailable
	}

	respond.JSON(writer, httpStatus, respond.SuccessEnvelope{Data: map[string]any{
		constants.FieldStatus: responseStatus,
		constants.FieldChecks: results,
	}})
}
