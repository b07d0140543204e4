package api

import (
	"errors"
	"net/http"

	"cubemap/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var invalidRef *domain.InvalidReferenceError
	var invalidJoin *domain.InvalidJoinError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &invalidRef):
		return http.StatusBadRequest
	case errors.As(err, &invalidJoin):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
