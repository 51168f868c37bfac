package models

import "errors"

// Error kinds surfaced by the progression engine. All of them are
// recoverable: callers fix the input or retry the whole operation.
var (
	// ErrInvalidQuality rejects review grades outside 0..5.
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")
	// ErrInvalidAmount rejects negative XP amounts.
	ErrInvalidAmount = errors.New("xp amount must not be negative")
	// ErrInvalidDate rejects activity dates that are empty or malformed.
	ErrInvalidDate = errors.New("invalid activity date")
	// ErrItemNotFound reports a missing vocabulary item.
	ErrItemNotFound = errors.New("vocabulary item not found")
	// ErrUserNotFound reports a missing user progression record.
	ErrUserNotFound = errors.New("user progression not found")
	// ErrItemArchived rejects reviews of archived vocabulary.
	ErrItemArchived = errors.New("vocabulary item is archived")
	// ErrStaleActivity rejects out-of-order activity dates. Streak state
	// never moves backwards.
	ErrStaleActivity = errors.New("activity date precedes last recorded activity")
	// ErrConflict reports a concurrent write detected by optimistic
	// versioning; the caller should retry the whole operation.
	ErrConflict = errors.New("record was modified concurrently")
)
