package achievement

import "time"

// Achievement is a catalog entry with one user's unlock status.
type Achievement struct {
	Definition
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}
