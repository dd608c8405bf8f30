package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata is a flat string map persisted as a JSONB column. Enrollments and
// payments use it for audit-style facts (cancellation details, payment
// numbers, gateway hints) that do not warrant their own columns.
type Metadata map[string]string

// Scan implements sql.Scanner so Metadata reads back from a JSONB column
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(Metadata)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("metadata column is not a JSONB byte slice: %v", value)
	}

	result := make(Metadata)
	err := json.Unmarshal(bytes, &result)
	*m = result
	return err
}

// Value implements driver.Valuer; a nil map persists as an empty object so
// readers never see SQL NULL
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(make(Metadata))
	}
	return json.Marshal(m)
}
