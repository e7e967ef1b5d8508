package handler

import (
	"context"
	"errors"

	"github.com/Alia5/egodrive/apitypes"
	apierror "github.com/Alia5/egodrive/internal/server/api/error"
	"github.com/Alia5/egodrive/internal/session"
	"github.com/Alia5/egodrive/vehicle"
)

// sessionError maps errors from the drive loop to API errors.
func sessionError(err error) error {
	var ae apitypes.ApiError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, vehicle.ErrNullEntity):
		return apierror.ErrConflict("no vehicle bound")
	case errors.Is(err, session.ErrStopped), errors.Is(err, context.Canceled):
		return apierror.ErrUnavailable("session is not running")
	case errors.Is(err, session.ErrNoTask):
		return apierror.ErrConflict(err.Error())
	default:
		return apierror.ErrInternal(err.Error())
	}
}
