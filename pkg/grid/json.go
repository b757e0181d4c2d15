package grid

import (
	"encoding/json"
	"fmt"
)

// Wire format: a Table serializes to a JSON array of flat row objects, one
// per row, holding exactly the declared columns with null for missing
// values. Object key order is not part of the contract, so column order
// does not survive a round trip.

// MarshalJSON implements json.Marshaler.
func (t *Table) MarshalJSON() ([]byte, error) {
	if len(t.rows) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(t.rows)
}

// UnmarshalJSON implements json.Unmarshaler. The current contents are
// replaced by replaying the decoded rows; a decode failure leaves the
// table unchanged.
func (t *Table) UnmarshalJSON(data []byte) error {
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRowShape, err)
	}
	rebuilt, err := NewTableFromRows(rows)
	if err != nil {
		return err
	}
	rebuilt.convert = t.convert
	t.columns = rebuilt.columns
	t.kinds = rebuilt.kinds
	t.rows = rebuilt.rows
	return nil
}

// Serialize returns the wire form of the table as a JSON string.
func (t *Table) Serialize() (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MarshalJSON implements json.Marshaler. Table-valued entries render as
// their row-array form; scalar entries are emitted as their stored string;
// null entries as JSON null.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.entries))
	for key, e := range r.entries {
		switch {
		case e.table != nil:
			out[key] = e.table
		case e.str != nil:
			out[key] = *e.str
		default:
			out[key] = nil
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. The payload must be a JSON
// object; per key, an array becomes a Table built from its row objects, an
// object becomes a single-row Table, a scalar becomes its string form, and
// null stays null. The current contents are replaced only on success.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrValueKind, err)
	}
	rebuilt := NewRecord()
	for key, value := range raw {
		if err := rebuilt.putDecoded(key, value); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
	}
	r.entries = rebuilt.entries
	return nil
}

// putDecoded stores a value decoded from the wire, where tables arrive as
// plain arrays/objects rather than *Table instances.
func (r *Record) putDecoded(key string, value any) error {
	switch v := value.(type) {
	case nil:
		return r.Put(key, nil)
	case []any:
		rows := make([]map[string]any, len(v))
		for i, elem := range v {
			row, ok := elem.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: array element %d is not a row object", ErrValueKind, i)
			}
			rows[i] = row
		}
		table, err := NewTableFromRows(rows)
		if err != nil {
			return err
		}
		return r.PutTable(key, table)
	case map[string]any:
		table, err := NewTableFromRows([]map[string]any{v})
		if err != nil {
			return err
		}
		return r.PutTable(key, table)
	default:
		return r.Put(key, value)
	}
}

// Serialize returns the wire form of the record as a JSON string.
func (r *Record) Serialize() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
