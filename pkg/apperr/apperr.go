// Package apperr defines the domain error taxonomy. Every business
// failure carries a numeric detail code surfaced verbatim on the wire.
package apperr

import (
	"errors"
	"fmt"
)

// Def identifies one failure kind: its numeric wire code and the
// canonical detail text.
type Def struct {
	Code int
	Text string
}

var (
	MissingMandatoryField  = Def{100, "Missing mandatory field in the request"}
	UserAlreadyExists      = Def{101, "User already exists"}
	InvalidUserRoleID      = Def{102, "Invalid User Role Id"}
	UserNotFound           = Def{103, "User not found"}
	UserNotAllowed         = Def{104, "User not allowed"}
	InvalidUserStatusID    = Def{105, "Invalid User Status Id"}
	InvalidEmail           = Def{106, "Invalid Email"}
	NegativeValue          = Def{107, "Negative value"}
	InvalidProductID       = Def{108, "Invalid product Id"}
	InvalidRequestStatusID = Def{109, "Invalid Request status Id"}
	InvalidRefNo           = Def{110, "Invalid Request RefNo"}
	NotImplemented         = Def{111, "Not implemented"}

	// UnableToSendB2BInvitation shares code 111 with NotImplemented.
	// The collision is part of the published wire contract and is kept.
	UnableToSendB2BInvitation = Def{111, "Unable to send B2B invitation"}

	BotValidationError = Def{112, "Bot validation error"}
)

// Error is a domain failure with the HTTP status it maps to.
type Error struct {
	Status      int
	Title       string
	Code        int
	Detail      string
	InnerDetail string
}

func (e *Error) Error() string {
	if e.InnerDetail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Title, e.Detail, e.InnerDetail)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

// New builds an Error for this failure kind.
func (d Def) New(title string, status int) *Error {
	return &Error{Status: status, Title: title, Code: d.Code, Detail: d.Text}
}

// WithInner builds an Error carrying additional caller-facing context.
func (d Def) WithInner(title string, status int, inner string) *Error {
	e := d.New(title, status)
	e.InnerDetail = inner
	return e
}

// Is reports whether err is a domain Error of this kind.
func (d Def) Is(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == d.Code && e.Detail == d.Text
}

// As unwraps a domain Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
