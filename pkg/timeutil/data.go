package timeutil

import "errors"

// ErrTimedOut is returned by RunWithTimeout when the timer fires before the
// detached function completes.
var ErrTimedOut = errors.New("timed out")
