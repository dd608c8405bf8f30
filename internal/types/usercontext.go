package types

// UserContext carries the learner attributes available to plan auto-detection
// rules, e.g. segment and role. It is supplied by the caller at enrollment time
// and is never persisted.
type UserContext map[string]string

// Well-known user context keys
const (
	UserContextSegment = "segment"
	UserContextRole    = "role"
)

// Get returns the value for key, or "" when absent
func (u UserContext) Get(key string) string {
	if u == nil {
		return ""
	}
	return u[key]
}
