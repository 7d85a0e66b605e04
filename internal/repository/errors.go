package repository

import "errors"

// ErrNotFound indicates the requested row does not exist. Repositories
// wrap it with the entity name for context.
var ErrNotFound = errors.New("not found")
