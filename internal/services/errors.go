package services

import "fmt"

// Wire status values consumed by API callers.
const (
	StatusUserCreated         = "user_created"
	StatusUserUpdated         = "user_updated"
	StatusUserDeactivated     = "user_deactivated"
	StatusUserAlreadyInactive = "user_already_inactive"
	StatusUserNotFound        = "user_not_found"
	StatusUserInactive        = "user_inactive"
	StatusUsernameAlreadyUsed = "username_already_used"
	StatusEmailAlreadyUsed    = "email_already_used"
)

// NotFoundError maps to HTTP 404 with a status discriminator.
type NotFoundError struct {
	Status string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Status)
}

// ConflictError maps to HTTP 409 with a status discriminator. The directory
// state is unchanged on every conflict path.
type ConflictError struct {
	Status string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Status)
}

// BadRequestError maps to HTTP 400 with a detail message.
type BadRequestError struct {
	Detail string
}

func (e *BadRequestError) Error() string {
	return e.Detail
}
