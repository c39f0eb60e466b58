package httpadapter

import (
	"net/http"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrSchemaMismatch):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrDatasetUnavailable):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
