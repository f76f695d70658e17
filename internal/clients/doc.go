// Package clients talks to the OAuth client registry of a Tapis tenant.
//
// The registry lives at <tenant-url>/clients/v2 and is protected by HTTP
// basic auth with the user's platform credentials:
//
//	lister := clients.NewLister()
//	list, err := lister.List(ctx, "https://api.tacc.utexas.edu", clients.Credentials{
//	    Username: "jdoe",
//	    Password: password,
//	})
//
// Transport failures and non-2xx responses are returned as *ClientError.
package clients
