// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them to stable HTTP responses without inspecting store errors.
package repository

import "errors"

// ErrInvalidCredentials is returned when authentication fails, whether
// the username is unknown or the password does not match.  The two
// cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUsernameExists is returned when provisioning an application whose
// username is already registered.
var ErrUsernameExists = errors.New("username already exists")

// ErrProductNotFound is returned when no product matches the given
// uuid or code.
var ErrProductNotFound = errors.New("product not found")

// ErrCodeInUse is returned when creating or updating a product with a
// code that already belongs to another product.  Handlers should
// translate this into an HTTP 409 response.
var ErrCodeInUse = errors.New("product code already in use")

// ErrProductTaken is returned when mutating or redeeming a product that
// has already been taken.  The redemption path maps it to 409; the
// update/delete paths treat the product as locked.
var ErrProductTaken = errors.New("product already taken")

// ErrOrderNotFound is returned when no order matches the given lookup.
var ErrOrderNotFound = errors.New("order not found")
