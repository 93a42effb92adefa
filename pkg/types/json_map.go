package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap stores a string-to-string mapping as a JSON column. It backs the
// per-company renewal portal links keyed by license type name.
type JSONMap map[string]string

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshaling json map: %w", err)
	}
	return raw, nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported json map source %T", src)
	}

	if len(raw) == 0 {
		*m = nil
		return nil
	}

	var decoded map[string]string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("unmarshaling json map: %w", err)
	}
	*m = decoded
	return nil
}
