// Package authz holds the authorization policy as pure functions over
// (caller identity, target resource owner). Route-level role gating
// lives in middleware; the rules here are the finer ownership checks.
package authz

import "procurement/internal/identity"

// CanReadUser allows reading a user record to the record owner or an
// Admin.
func CanReadUser(caller identity.Identity, targetEmail string) bool {
	return caller.Email == targetEmail || caller.IsAdmin()
}

// CanUpdateUser allows a caller to patch her own first/last name.
// Touching role, status or email requires an Admin, as does patching
// someone else.
func CanUpdateUser(caller identity.Identity, targetEmail string, touchesPrivileged bool) bool {
	if caller.IsAdmin() {
		return true
	}
	return caller.Email == targetEmail && !touchesPrivileged
}

// CanAmendRequest allows adding a revision only to the original
// creator of the request chain.
func CanAmendRequest(caller identity.Identity, ownerEmail string) bool {
	return caller.Email == ownerEmail
}

// CanDeleteRequestChain allows a Coordinator to purge any chain. A
// caller in the User role may purge a chain only when she owns every
// revision in it.
func CanDeleteRequestChain(caller identity.Identity, ownerEmails []string) bool {
	if !caller.IsUser() {
		return true
	}
	for _, owner := range ownerEmails {
		if owner != caller.Email {
			return false
		}
	}
	return true
}

// VisibleOwner returns the owner filter for request listings: empty
// (no filter) for Coordinators, the caller's own email otherwise.
func VisibleOwner(caller identity.Identity) string {
	if caller.IsCoordinator() {
		return ""
	}
	return caller.Email
}
