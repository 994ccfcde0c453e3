package interactionsparser

import "errors"

// ErrEmptyInput is returned when no medication name survives trimming.
// The check runs before any upstream call so an empty request never
// costs a generator round trip.
var ErrEmptyInput = errors.New("no medication provided")
