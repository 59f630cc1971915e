package ledgerdb

import "errors"

// ErrNotFound is returned when a ledger row or scoring rule does not exist.
var ErrNotFound = errors.New("ledger record not found")
