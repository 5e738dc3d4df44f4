package activity

import "errors"

// ErrInvalidInput indicates an incomplete activity entry.
var ErrInvalidInput = errors.New("invalid activity input")
