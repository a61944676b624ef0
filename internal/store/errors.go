package store

import "errors"

// errTransient simulates a store outage in the in-memory implementations.
var errTransient = errors.New("store temporarily unavailable")
