package b

import "time"

// Packages outside the checked list may read the clock freely.
func stamp() time.Time {
	return time.Now().UTC()
}
