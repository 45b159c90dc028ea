package jobs

import "errors"

// ErrForbidden is returned when the caller does not own the resource a
// launch, update, or delete refers to.
var ErrForbidden = errors.New("caller does not own this resource")

// ErrValidation is returned for malformed launch parameters.
var ErrValidation = errors.New("invalid job parameters")
