/*
Package regsdk is a small client for the hackreg registration API.

# Overview

Client covers the public endpoints and produces a Session once a caller has
an auth token:

	client := regsdk.NewClient("https://reg.example.com")

	health, err := client.GetLiveness(ctx)

	session, err := client.Register(ctx, "ada@utexas.edu", "secret1")
	session, err = client.Login(ctx, "ada@utexas.edu", "secret1")

A Session carries the bearer token and exposes the user and admin
operations:

	me, err := session.Me(ctx)
	me, err = session.UpdateProfile(ctx, me.ID, profile)
	me, err = session.JoinTeam(ctx, me.ID, "rockets")

Admin calls fail with a 403 *APIError unless the token belongs to an admin.

# Errors

Every non-2xx response is returned as *APIError carrying the HTTP status,
the error kind and the message shown to users:

	var apiErr *regsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
		// team is full
	}

# Thread Safety

Client and Session hold no mutable state after construction and may be
shared between goroutines.
*/
package regsdk
