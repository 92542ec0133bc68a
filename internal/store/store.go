// Package store defines the key-value persistence boundary used by the ledger
// and the auth services, together with the key layout shared with the
// original browser application.
package store

// Store is a string key-value store. Get reports ok=false for absent keys.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// SessionKey holds the username of the currently logged-in user.
const SessionKey = "loggedInUser"

// ThemeKey holds the selected theme name.
const ThemeKey = "budgetTheme"

// UserKey returns the key of a user's credentials record.
func UserKey(username string) string {
	return "budgetUser_" + username
}

// LedgerKey returns the key of a user's ledger record.
func LedgerKey(username string) string {
	return username + "-budget"
}
