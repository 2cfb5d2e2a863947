// Package authz is the single decision point for request authorization.
//
// # Overview
//
// Every operation registers a RouteSpec: a static value declaring whether
// the operation is public and which action/subject pairs an authenticated
// caller must satisfy. The guard middleware evaluates the spec against the
// caller's ability before the handler runs and before any data access.
//
// # Declaring operations
//
//	spec := authz.RouteSpec{
//		Name:    "catalogs.update",
//		Require: []acl.Requirement{{Action: acl.ActionUpdate, Subject: acl.SubjectCatalog}},
//	}
//	router.Handle("/catalogs/{id}", authz.Guard(spec)(handler)).Methods("PUT")
//
// Requirements are conjunctive and checked in declaration order; the first
// unmet pair fails the request with a message naming that pair. An empty
// Require list on a non-public spec admits any authenticated caller — a
// pattern several endpoints rely on.
//
// # Error semantics
//
// Missing identity on a non-public operation is an authentication failure
// (401), not an authorization failure (403). The two remain distinct error
// kinds all the way to the transport.
//
// The decision is pure: no state is read or written besides the identity
// already resolved for the request, and nothing is cached across requests.
package authz
