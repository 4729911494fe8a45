// Package pypi provides an HTTP client for the Python Package Index JSON API.
//
// # Usage
//
//	client := pypi.NewClient(memo, pypi.DefaultBaseURL)
//
//	if client.Exists(ctx, "requests") {
//	    version, ok := client.LatestVersion(ctx, "requests")
//	    fmt.Println(version, ok)
//	}
//
// # Failure policy
//
// The index is an unreliable collaborator. [Client.Exists] answers true for
// anything but a definite 404, so lack of connectivity never makes a package
// look absent. [Client.LatestVersion] answers ("", false) for any HTTP error,
// timeout, or malformed response. Neither method returns an error and neither
// retries.
//
// # Memoization
//
// Both methods share one memoized lookup per normalized package name, so the
// existence probe and the version query cost a single request per run.
//
// Package names are normalized following PEP 503.
package pypi
