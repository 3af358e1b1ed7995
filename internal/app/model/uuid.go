package model

import "github.com/google/uuid"

// ensureUUID fills an empty public identifier. Existing values are never replaced.
func ensureUUID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
