package recipebrowser

import "errors"

// ErrNotFound is returned when a recipe lookup matches nothing.
var ErrNotFound = errors.New("recipe not found")
