// Package credential defines the stored principal record and the store
// contract the auth service relies on, with an in-memory and a GORM-backed
// implementation.
//
// Stores guarantee that no two records share a username or an email under
// case-insensitive comparison, while preserving the case each was
// registered with. The guarantee holds under concurrent inserts: a losing
// insert fails with a *DuplicateError naming the taken field.
package credential
