// Package wallet provisions one custodial wallet per user at login.
//
// Provisioning is idempotent: the first login creates the wallet, every
// later login returns the same one, and two concurrent first logins resolve
// through the store's uniqueness guarantee rather than a lock. The actual
// key custody sits behind the Provisioner interface so the HTTP layer and
// tests never touch the signing backend.
package wallet
