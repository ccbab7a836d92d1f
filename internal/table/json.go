package table

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

var (
	// ErrMissingField is wrapped by a LoadError when a row lacks a required field
	// or carries null for it.
	ErrMissingField = errors.New("missing required field")
	// ErrFieldType is wrapped by a LoadError when a field has the wrong JSON type.
	ErrFieldType = errors.New("wrong field type")
	// ErrColumnLength is wrapped by a LoadError when a column of a
	// column-oriented document has a different number of entries than Gene.
	ErrColumnLength = errors.New("column length mismatch")
)

var (
	stringFields = []string{"Gene", "Feature", "Cancer", "Target", "Type"}
	numberFields = []string{"Value", "Gini", "R"}
)

// LoadJSON reads a JSON dataset from path.
func LoadJSON(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, loadErr(path, err)
	}
	return ParseJSON(data, path)
}

// ParseJSON decodes either an array of row objects or a column-oriented
// object ({"Gene": {"0": ...}} or {"Gene": [...]}). source only labels errors.
func ParseJSON(data []byte, source string) (*Table, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, loadErr(source, errors.New("empty document"))
	}

	var rows []Row
	var err error
	switch trimmed[0] {
	case '[':
		rows, err = parseRecords(trimmed, source)
	case '{':
		rows, err = parseColumns(trimmed, source)
	default:
		return nil, loadErr(source, fmt.Errorf("unexpected JSON document starting with %q", trimmed[0]))
	}
	if err != nil {
		return nil, err
	}
	return New(rows), nil
}

func parseRecords(data []byte, source string) ([]Row, error) {
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, loadErr(source, err)
	}

	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		row, err := decodeRow(func(name string) (json.RawMessage, bool) {
			raw, ok := rec[name]
			return raw, ok
		})
		if err != nil {
			err.Source, err.Row = source, i
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// column is one field of a column-oriented document, addressed by index key.
type column struct {
	keys   []string
	values map[string]json.RawMessage
}

func parseColumns(data []byte, source string) ([]Row, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, loadErr(source, err)
	}

	cols := make(map[string]column, len(Columns))
	for _, name := range Columns {
		r, ok := raw[name]
		if !ok {
			return nil, &LoadError{Source: source, Row: -1, Field: name, Err: ErrMissingField}
		}
		col, err := decodeColumn(r)
		if err != nil {
			return nil, &LoadError{Source: source, Row: -1, Field: name, Err: err}
		}
		cols[name] = col
	}

	// Row order and count follow the Gene column; every other column must
	// carry the same number of entries.
	index := cols["Gene"].keys
	for _, name := range Columns {
		if n := len(cols[name].keys); n != len(index) {
			return nil, &LoadError{Source: source, Row: -1, Field: name,
				Err: fmt.Errorf("%w: %d entries, Gene has %d", ErrColumnLength, n, len(index))}
		}
	}
	rows := make([]Row, 0, len(index))
	for i, key := range index {
		row, err := decodeRow(func(name string) (json.RawMessage, bool) {
			v, ok := cols[name].values[key]
			return v, ok
		})
		if err != nil {
			err.Source, err.Row = source, i
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeColumn(raw json.RawMessage) (column, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return column{}, ErrMissingField
	}
	if trimmed[0] != '[' && trimmed[0] != '{' {
		return column{}, fmt.Errorf("%w: column must be an array or an object", ErrFieldType)
	}
	if trimmed[0] == '[' {
		var values []json.RawMessage
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return column{}, err
		}
		col := column{keys: make([]string, len(values)), values: make(map[string]json.RawMessage, len(values))}
		for i, v := range values {
			k := strconv.Itoa(i)
			col.keys[i] = k
			col.values[k] = v
		}
		return col, nil
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &values); err != nil {
		return column{}, err
	}
	type indexed struct {
		key string
		pos int
	}
	keys := make([]indexed, 0, len(values))
	for k := range values {
		pos, err := strconv.Atoi(k)
		if err != nil {
			return column{}, fmt.Errorf("non-integer index key %q", k)
		}
		keys = append(keys, indexed{key: k, pos: pos})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].pos < keys[j].pos })

	col := column{keys: make([]string, len(keys)), values: values}
	for i, k := range keys {
		col.keys[i] = k.key
	}
	return col, nil
}

func decodeRow(field func(name string) (json.RawMessage, bool)) (Row, *LoadError) {
	strs := make(map[string]string, len(stringFields))
	for _, name := range stringFields {
		raw, err := present(field, name)
		if err != nil {
			return Row{}, err
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Row{}, &LoadError{Field: name, Err: fmt.Errorf("%w: %v", ErrFieldType, err)}
		}
		strs[name] = s
	}

	nums := make(map[string]float64, len(numberFields))
	for _, name := range numberFields {
		raw, err := present(field, name)
		if err != nil {
			return Row{}, err
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return Row{}, &LoadError{Field: name, Err: fmt.Errorf("%w: %v", ErrFieldType, err)}
		}
		nums[name] = f
	}

	return Row{
		Gene:    strs["Gene"],
		Feature: strs["Feature"],
		Cancer:  strs["Cancer"],
		Target:  strs["Target"],
		Type:    strs["Type"],
		Value:   nums["Value"],
		Gini:    nums["Gini"],
		R:       nums["R"],
	}, nil
}

func present(field func(name string) (json.RawMessage, bool), name string) (json.RawMessage, *LoadError) {
	raw, ok := field(name)
	if !ok {
		return nil, &LoadError{Field: name, Err: ErrMissingField}
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, &LoadError{Field: name, Err: ErrMissingField}
	}
	return raw, nil
}
