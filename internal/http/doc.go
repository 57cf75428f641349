// Package http provides an HTTP client configured for the SPED table service.
//
// The Client in this package handles:
//   - XML POST requests to the manifest web service
//   - GET requests for table CSV downloads
//   - Per-request timeouts
//   - Optional rate limiting shared by all workers
//
// # Basic Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	// Fetch a manifest
//	body, err := client.PostXML(ctx, serviceURL, requestXML)
//
//	// Download a table
//	data, err := client.Get(ctx, download.RequestURL())
//
// # Errors
//
// Every failure is returned as a *TransportError carrying the method, the
// URL and, when a response arrived, its status code:
//
//	var terr *http.TransportError
//	if errors.As(err, &terr) && terr.StatusCode == 404 {
//	    // table not published
//	}
package http
