package archive

import (
	"fmt"
	"net/url"
	"regexp"
)

const (
	// BaseURL is the archive origin
	BaseURL = "https://archiveofourown.org"

	// LoginEndpoint is the session login path, fetched for the CSRF token
	// and then posted to with the credentials
	LoginEndpoint = "/users/login"

	// DefaultListing is the history listing scraped by default
	DefaultListing = "readings"

	// DefaultUserAgent identifies the tool to the origin
	DefaultUserAgent = "AO3Wrapped/1.0.0"

	// CSRFSelector locates the anti-forgery token on the login page
	CSRFSelector = `meta[name="csrf-token"]`
)

// usernamePattern follows the archive's account rules: 3 to 40 characters,
// letters, digits and underscores only.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,40}$`)

// IsValidUsername reports whether a username can appear in a history URL
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// LoginURL returns the absolute login endpoint for a base URL
func LoginURL(base string) string {
	return base + LoginEndpoint
}

// HistoryPath builds the relative per-user listing path
func HistoryPath(username, listing string) string {
	if listing == "" {
		listing = DefaultListing
	}
	return fmt.Sprintf("/users/%s/%s", url.PathEscape(username), url.PathEscape(listing))
}

// HistoryURL builds the absolute URL for one page of a user's listing
func HistoryURL(base, username, listing string, page int) string {
	return fmt.Sprintf("%s%s?page=%d", base, HistoryPath(username, listing), page)
}
