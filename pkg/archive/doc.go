// Package archive implements the HTTP client for the Archive of Our Own,
// covering the credential login flow and authenticated history fetches.
//
// Key features:
//   - Cookie-backed resty client restricted to the archive's domain
//   - CSRF token extraction from the login page before the credential post
//   - Post-login verification via the flash notice and the logout link
//   - Typed errors distinguishing retryable failures from fatal ones
//
// Example usage:
//
//	client := archive.NewClient(archive.Config{}, log)
//	session, err := client.Login(ctx, archive.Credentials{
//		Username: "reader",
//		Password: "hunter2",
//	})
//	if err != nil {
//		return err
//	}
//	doc, err := session.FetchHistoryPage(ctx, archive.DefaultListing, 1)
package archive
