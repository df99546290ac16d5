package namespace

import "fmt"

// IOError reports a namespace file that could not be read. Reloads log it
// and keep serving the previous bindings.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("namespace %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
