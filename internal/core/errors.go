package core

import (
	"errors"
	"fmt"
)

// Error classes. Operations detect their class before mutating shared state;
// once locks are held a failed check aborts with nothing committed.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrTimeout           = errors.New("timeout")
	ErrInvariant         = errors.New("invariant violation")
)

// Named conditions within the classes above.
var (
	ErrAlreadyLiked    = fmt.Errorf("%w: already liked", ErrConflict)
	ErrNotLiking       = fmt.Errorf("%w: not liking", ErrConflict)
	ErrAlreadyFollows  = fmt.Errorf("%w: already following", ErrConflict)
	ErrAlreadyMutes    = fmt.Errorf("%w: already muting", ErrConflict)
	ErrAlreadyReposted = fmt.Errorf("%w: already reposted", ErrConflict)
	ErrSelfTarget      = fmt.Errorf("%w: operation targets self", ErrConflict)
	ErrUnlikeWindow    = fmt.Errorf("%w: unlike window elapsed", ErrTimeout)
)
