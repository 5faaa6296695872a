package city

import "fmt"

// DataError reports malformed or inconsistent city input. It is fatal to
// loading that city only.
type DataError struct {
	City   string
	Field  string
	Reason string
	Err    error
}

func (e *DataError) Error() string {
	where := e.Field
	if e.City != "" {
		where = fmt.Sprintf("city %q: %s", e.City, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", where, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", where, e.Reason)
}

func (e *DataError) Unwrap() error { return e.Err }
