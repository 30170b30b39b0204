// Package usl provides a client for the Universal Scammer List API.
//
// The client is a thin mapping of the site's endpoints: every method issues
// one HTTP request, checks the JSON envelope and returns its data. There is
// no caching, retrying or rate limiting.
//
// # Usage
//
//	client, err := usl.NewClient("bot ban-sync by /u/myusername",
//		usl.WithTimeout(30*time.Second),
//		usl.WithLogger(logger),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := client.Login(ctx, "myusername", "hunter2", usl.DurationOneDay)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Logout(ctx, sess)
//
//	status, err := client.Check(ctx, sess, "johndoe", nil)
//
// # Bulk listings
//
// BulkQuery2 pages through the ban list with an opaque cursor: pass the
// returned NextID back as startID until it is nil. WalkBans does this for
// you. The listing may change between pages and never reports unbans.
//
// # Error Handling
//
// Failures the caller can act on are returned as *Error with a Kind:
//
//   - KindAPI: the site answered success:false (ErrorType, ErrorMessage)
//   - KindMalformed: the response could not be interpreted (Reason, Payload)
//   - KindClient: a local precondition failed or a bad HTTP status was
//     returned (Reason, StatusCode, Payload)
//
// Use errors.Is with ErrAPI, ErrMalformed or ErrClient, or AsError:
//
//	if e, ok := usl.AsError(err); ok && e.Kind == usl.KindAPI {
//		log.Printf("%s: %s", e.ErrorType, e.ErrorMessage)
//	}
package usl
