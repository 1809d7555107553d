package gallery

import "errors"

// ErrNotFound is returned when no record has the requested key.
var ErrNotFound = errors.New("image not found")
