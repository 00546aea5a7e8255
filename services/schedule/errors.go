package schedule

import "errors"

// ErrInvalidInterval is returned when a candidate interval has end <= start.
// Such candidates are always rejected, never retried.
var ErrInvalidInterval = errors.New("invalid interval: end must be after start")
