// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/contactbook/internal/platform/apperr"
	"github.com/taibuivan/contactbook/internal/platform/constants"
	"github.com/taibuivan/contactbook/internal/platform/ctxutil"
	"github.com/taibuivan/contactbook/internal/platform/respond"
)

const welcomeMessage = "Welcome to Contactbook!"

// errDatabaseMisconfigured is answered by /api/healthchecker when SELECT 1 fails.
var errDatabaseMisconfigured = &apperr.AppError{
	Code:       "DATABASE_UNAVAILABLE",
	Message:    "Database is not configured correctly",
	HTTPStatus: http.StatusInternalServerError,
}

// HealthDependencies holds the injectable dependency checkers for the probes.
type HealthDependencies struct {
	// CheckDatabase runs a trivial query against PostgreSQL.
	CheckDatabase func(ctx context.Context) error

	// CheckCache pings Redis.
	CheckCache func(ctx context.Context) error
}

// HealthHandlers are the three unauthenticated probe endpoints.
type HealthHandlers struct {
	dependencies HealthDependencies
}

// NewHealthHandlers creates the probe handlers.
func NewHealthHandlers(deps HealthDependencies) *HealthHandlers {
	return &HealthHandlers{dependencies: deps}
}

// Liveness handles GET /health. It only proves the process is serving.
func (handler *HealthHandlers) Liveness(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
}

// Welcome handles GET /api/healthchecker.
func (handler *HealthHandlers) Welcome(writer http.ResponseWriter, request *http.Request) {
	if check := handler.dependencies.CheckDatabase; check != nil {
		if err := check(request.Context()); err != nil {
			ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "healthchecker_database_failed",
				slog.String("error", err.Error()),
			)
			respond.Error(writer, request, errDatabaseMisconfigured)
			return
		}
	}

	respond.JSON(writer, http.StatusOK, map[string]string{constants.FieldMessage: welcomeMessage})
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Readiness handles GET /ready: 200 when every dependency answers, 503 otherwise.
func (handler *HealthHandlers) Readiness(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

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
		if err := dependency.check(ctx); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			isSystemReady = false
			ctxutil.GetLogger(ctx).ErrorContext(ctx, "readiness_check_failed",
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
