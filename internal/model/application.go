package model

// Application is a service-account credential permitted to call the API.
// Rows are provisioned out-of-band (cmd/migrate) and read-only at
// runtime.  The plaintext password is never stored; PassHash holds the
// bcrypt digest and verification goes through utils.VerifyPassword.
//
// Fields:
//  ID       – primary key identifier.
//  Username – unique account name, the token subject.
//  PassHash – bcrypt hash of the password.
type Application struct {
	ID       uint64 // application.id
	Username string // application.username
	PassHash string // application.pass_hash
}
