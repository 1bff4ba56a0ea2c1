package errors

import stderrors "errors"

var (
	// ErrDataAccess marks failures reaching or querying the transaction store.
	ErrDataAccess = stderrors.New("data access failed")
	// ErrMalformedRow marks a source row that cannot be decoded or aggregated.
	ErrMalformedRow = stderrors.New("malformed transaction row")
)

// Classify maps an error chain onto the code used when logging or reporting it.
func Classify(err error) ErrorCode {
	var appErr *AppError
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, ErrMalformedRow):
		return CodeMalformedRow
	case stderrors.Is(err, ErrDataAccess):
		return CodeDataAccess
	case stderrors.As(err, &appErr):
		return appErr.Code
	default:
		return CodeInternal
	}
}
