package auth

// CanMutate reports whether id may modify a resource owned by ownerID.
// Admins may mutate anything; everyone else only their own resources.
// Owner ids are compared as canonical strings, never as loosely-coerced
// values.
func CanMutate(id Identity, ownerID string) bool {
	if id.Admin {
		return true
	}
	return ownerID != "" && id.UserID == ownerID
}

// CanDeleteUser reports whether id may delete a user account. Deleting
// accounts is admin-only: unlike updates, owning the account is not enough.
func CanDeleteUser(id Identity) bool {
	return id.Admin
}
