package models

import "github.com/google/uuid"

// NewID builds a prefixed document id, e.g. "user<uuid>" or "conv<uuid>".
// Prefixed string ids double as the mongo _id so lookups stay on the
// default index.
func NewID(prefix string) string {
	return prefix + uuid.NewString()
}
