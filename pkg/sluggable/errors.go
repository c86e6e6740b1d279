package sluggable

import "errors"

var (
	// ErrConfiguration is the root of every configuration failure. It is never
	// retried: a broken configuration fails every create and update.
	ErrConfiguration         = errors.New("sluggable: invalid configuration")
	ErrNoSourceFields        = errors.New("sluggable: no source fields configured")
	ErrSelfReferentialSource = errors.New("sluggable: slug field listed as its own source")
	ErrEmptyFallback         = errors.New("sluggable: fallback does not produce a slug")
	ErrUnknownEntityType     = errors.New("sluggable: unknown entity type")
	ErrInvalidConfigFile     = errors.New("sluggable: failed to parse configuration file")

	// ErrSlugConflict signals that storage rejected a slug because another
	// record already holds it. Generator.Assign re-derives on this error.
	ErrSlugConflict     = errors.New("sluggable: slug already taken")
	ErrTooManyConflicts = errors.New("sluggable: slug still conflicting after retries")
	ErrLookupFailed     = errors.New("sluggable: failed to fetch sibling slugs")
	ErrLockFailed       = errors.New("sluggable: failed to acquire slug lock")
	ErrNilPersist       = errors.New("sluggable: persist function is nil")
	ErrRecordNotFound   = errors.New("sluggable: record not found")
)
