package repository

import "errors"

// ErrNotFound is a repository-specific sentinel error. It is returned when a
// query for a single entity (e.g., GetSession) finds no rows.
//
// The service layer checks for this specific error and translates it into a
// domain-level error (like `app_errors.ErrNotFound`), decoupling the business
// logic from the data access implementation and the underlying driver's
// error (e.g., `sql.ErrNoRows`).
var ErrNotFound = errors.New("repository: not found")
