package server

// TransientError marks a persistence failure that is safe for the caller to
// retry; handlers map it to HTTP 500 rather than 400.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "storage unavailable: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error { return e.Err }

func transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}
