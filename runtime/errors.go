package runtime

import (
	"errors"
	"fmt"
)

// Sentinel usage errors: misuse by the host, surfaced synchronously, never
// swallowed.
var (
	ErrUnknownAttribute       = errors.New("unknown attribute")
	ErrSchemaMissing          = errors.New("attribute schema missing")
	ErrAlreadyGranted         = errors.New("ability already granted")
	ErrInvalidComponentConfig = errors.New("invalid component config")
	ErrTimelineAssetMissing   = errors.New("timeline asset missing")
)

// Wrapf wraps a sentinel usage error with contextual detail, keeping
// errors.Is(err, sentinel) working for callers while still reading well
// in logs.
func Wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
