// Package models holds the persisted row types shared by repositories and
// services.
package models

// User is a registered account. Rows are immutable after registration.
//
// Password is the salted argon2id digest of the user's password.
// SecretKey is the user's ed25519 identity seed, sealed at rest under a
// key derived from the password (see cryptox). It fixes the user's peer ID
// across runs.
type User struct {
	ID        int64
	Name      string
	PhoneNo   uint64
	Password  string
	SecretKey string
	Admin     bool
}
