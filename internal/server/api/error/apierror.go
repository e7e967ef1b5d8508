// Package apierror holds the problem+json error factories shared by the API
// server, its handlers and the client.
package apierror

import (
	"errors"

	"github.com/Alia5/egodrive/apitypes"
)

func ErrBadRequest(detail string) apitypes.ApiError {
	return apitypes.ApiError{Status: 400, Title: "Bad Request", Detail: detail}
}
func ErrUnauthorized(detail string) apitypes.ApiError {
	return apitypes.ApiError{Status: 401, Title: "Unauthorized", Detail: detail}
}
func ErrNotFound(detail string) apitypes.ApiError {
	return apitypes.ApiError{Status: 404, Title: "Not Found", Detail: detail}
}
func ErrConflict(detail string) apitypes.ApiError {
	return apitypes.ApiError{Status: 409, Title: "Conflict", Detail: detail}
}
func ErrUnavailable(detail string) apitypes.ApiError {
	return apitypes.ApiError{Status: 503, Title: "Service Unavailable", Detail: detail}
}
func ErrInternal(detail string) apitypes.ApiError {
	return apitypes.ApiError{Status: 500, Title: "Internal Server Error", Detail: detail}
}

// WrapError normalizes any error into apitypes.ApiError.
// Wrapped ApiErrors are found through errors.As.
func WrapError(err error) apitypes.ApiError {
	var ae apitypes.ApiError
	if errors.As(err, &ae) {
		return ae
	}
	var aep *apitypes.ApiError
	if errors.As(err, &aep) && aep != nil {
		return *aep
	}
	return ErrInternal(err.Error())
}
