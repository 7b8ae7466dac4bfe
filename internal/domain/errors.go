package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is a Vim error number.
type ErrorCode int

const (
	E16  ErrorCode = 16
	E32  ErrorCode = 32
	E35  ErrorCode = 35
	E37  ErrorCode = 37
	E212 ErrorCode = 212
	E486 ErrorCode = 486
	E488 ErrorCode = 488
	E492 ErrorCode = 492
)

var errorMessages = map[ErrorCode]string{
	E16:  "Invalid range",
	E32:  "No file name",
	E35:  "No previous regular expression",
	E37:  "No write since last change (add ! to override)",
	E212: "Can't open file for writing",
	E486: "Pattern not found",
	E488: "Trailing characters",
	E492: "Not an editor command",
}

// ErrorKind groups error codes by how the command line reacts to them.
type ErrorKind int

const (
	// KindOther errors are reported to the user.
	KindOther ErrorKind = iota
	// KindUnsupported errors mean the built-in engine cannot run the command.
	KindUnsupported
)

// VimError is a classified editor error carrying a Vim error code.
type VimError struct {
	Code    ErrorCode
	Message string
}

// NewVimError builds an error with the standard message for code.
func NewVimError(code ErrorCode) *VimError {
	return &VimError{Code: code, Message: errorMessages[code]}
}

// NewVimErrorf builds an error with the standard message for code followed by
// extra detail, e.g. "E486: Pattern not found: foo".
func NewVimErrorf(code ErrorCode, format string, args ...interface{}) *VimError {
	return &VimError{Code: code, Message: errorMessages[code] + ": " + fmt.Sprintf(format, args...)}
}

func (e *VimError) Error() string {
	return fmt.Sprintf("E%d: %s", e.Code, e.Message)
}

// Kind classifies the error.
func (e *VimError) Kind() ErrorKind {
	if e.Code == E492 {
		return KindUnsupported
	}
	return KindOther
}

// AsVimError unwraps err to a *VimError if there is one in its chain.
func AsVimError(err error) (*VimError, bool) {
	var vimErr *VimError
	if errors.As(err, &vimErr) {
		return vimErr, true
	}
	return nil, false
}
