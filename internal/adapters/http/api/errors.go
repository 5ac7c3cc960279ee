package api

import (
	"errors"
	"net/http"

	"github.com/okian/golazo/internal/adapters/repository"
	service "github.com/okian/golazo/internal/app"
	"github.com/okian/golazo/internal/domain/types"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrDuplicate  = errors.New("duplicate request")
)

// statusFor maps an error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, types.CodeBadRequest
	case errors.Is(err, repository.ErrInvalidName):
		return http.StatusBadRequest, types.CodeInvalidName
	case errors.Is(err, repository.ErrUnknownPlayer):
		return http.StatusBadRequest, types.CodeUnknownPlayer
	case errors.Is(err, repository.ErrInvalidGoals):
		return http.StatusBadRequest, types.CodeInvalidGoals
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, types.CodeNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict, types.CodeDuplicate
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, types.CodeBackpressure
	default:
		return http.StatusInternalServerError, types.CodeInternal
	}
}
