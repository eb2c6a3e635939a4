package services

import "errors"

// Sentinel errors handlers match on to pick a status code and user
// message. Anything not listed here is treated as an internal failure.
var (
	// ErrEmailTaken is returned when registering with an email that
	// already has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong
	// password so login failures do not reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrResetTokenInvalid is returned when a password reset is
	// attempted with a token that is unknown, used, or expired.
	ErrResetTokenInvalid = errors.New("reset token is invalid or expired")

	// ErrProductNotFound is returned when a cart operation references a
	// product id that is not on the menu.
	ErrProductNotFound = errors.New("product not found")

	// ErrEmptyCart is returned when checkout is attempted with nothing
	// in the cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// ValidationError reports the first delivery-form field that failed
// validation, with the message meant for the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
