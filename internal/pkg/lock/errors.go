package lock

import "errors"

// ErrLockTimeout is returned when a book lock cannot be acquired in time.
var ErrLockTimeout = errors.New("scorebook is busy, try again")
