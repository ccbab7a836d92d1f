package table

import "fmt"

// LoadError reports why the dataset could not be loaded. Row is -1 when the
// failure is not tied to a single record.
type LoadError struct {
	Source string
	Row    int
	Field  string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("load %s: row %d: field %q: %v", e.Source, e.Row, e.Field, e.Err)
	case e.Row >= 0:
		return fmt.Sprintf("load %s: row %d: %v", e.Source, e.Row, e.Err)
	default:
		return fmt.Sprintf("load %s: %v", e.Source, e.Err)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func loadErr(source string, err error) *LoadError {
	return &LoadError{Source: source, Row: -1, Err: err}
}
