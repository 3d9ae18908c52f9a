package domain

import "fmt"

// Error is the unified error type for the service.
// Each error has a numeric code and human-readable message.
type Error struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("procurement error %d: %s", e.Code, e.Message)
}

// Is reports whether target carries the same code, so wrapped copies match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates an Error with the sentinel's code that includes a cause.
func Wrap(sentinel *Error, msg string, cause error) *Error {
	return &Error{Code: sentinel.Code, Message: fmt.Sprintf("%s: %s: %v", sentinel.Message, msg, cause)}
}

// ---- Directory errors (-32040 to -32069) ----

var (
	ErrSupplierNotFound = &Error{Code: -32040, Message: "supplier not found"}
	ErrInvalidSupplier  = &Error{Code: -32041, Message: "invalid supplier record"}
)

// ---- Collaborator errors (-32070 to -32099) ----

var (
	ErrOrderSourceFailed = &Error{Code: -32070, Message: "order source request failed"}
	ErrTransportFailed   = &Error{Code: -32071, Message: "message transport request failed"}
	ErrInvalidResponse   = &Error{Code: -32072, Message: "collaborator returned invalid response"}
)

// ---- Boundary errors (-32100 to -32129) ----

var (
	ErrInvalidPayload = &Error{Code: -32100, Message: "invalid request payload"}
)

// ---- Store / Config errors (-32130 to -32159) ----

var (
	ErrStoreInit     = &Error{Code: -32130, Message: "failed to initialize store"}
	ErrStoreQuery    = &Error{Code: -32131, Message: "store query failed"}
	ErrStoreWrite    = &Error{Code: -32132, Message: "store write failed"}
	ErrConfigInvalid = &Error{Code: -32136, Message: "invalid configuration"}
)
