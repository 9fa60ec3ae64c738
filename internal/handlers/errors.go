package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/turi/backend/internal/services"
	authmiddleware "github.com/turi/backend/libs/auth/middleware"
	"github.com/turi/backend/libs/handlers"
	"go.uber.org/zap"
)

// statusFor maps a service error to an HTTP status and a message safe to show to the client
func statusFor(err error) (int, string) {
	var secErr *services.SecurityError
	if errors.As(err, &secErr) {
		switch secErr.Kind {
		case services.KindInvalidInput:
			return http.StatusBadRequest, secErr.Message
		case services.KindAccessDenied:
			return http.StatusForbidden, secErr.Message
		case services.KindRateLimited:
			return http.StatusTooManyRequests, secErr.Message
		case services.KindNotAuthenticated:
			return http.StatusUnauthorized, secErr.Message
		}
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, services.ErrUserNotFound.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, services.ErrInvalidCredentials.Error()
	case errors.Is(err, services.ErrTokenNotFound):
		return http.StatusUnauthorized, services.ErrTokenNotFound.Error()
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict, services.ErrEmailTaken.Error()
	case errors.Is(err, services.ErrGenerationUnavailable):
		return http.StatusServiceUnavailable, services.ErrGenerationUnavailable.Error()
	case errors.Is(err, services.ErrInvalidModelOutput):
		return http.StatusBadGateway, services.ErrInvalidModelOutput.Error()
	case errors.Is(err, services.ErrGenerationFailed):
		return http.StatusBadGateway, services.ErrGenerationFailed.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"
	}

	return http.StatusInternalServerError, "internal server error"
}

// respondServiceError writes the mapped error response. Server side failures are logged at error level.
func respondServiceError(h *handlers.BaseHandler, w http.ResponseWriter, r *http.Request, err error, action string) {
	status, message := statusFor(err)
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.Logger.Error("failed to "+action, fields...)
	} else {
		h.Logger.Debug("request rejected: "+action, fields...)
	}
	h.RespondError(w, status, message)
}

// requireUserID reads the authenticated user id and answers 401 when it is missing
func requireUserID(h *handlers.BaseHandler, w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := authmiddleware.GetUserID(r.Context())
	if !ok || userID == uuid.Nil {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return uuid.Nil, false
	}
	return userID, true
}
