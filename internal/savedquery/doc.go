// Package savedquery defines the immutable value types of the gateway: a
// saved query Definition parsed from one template file, the HTTP Method it is
// registered under, and the composite Key used by the registry.
//
// Logical names are compared in canonical form (see CanonicalName), so
// "Orders/Recent", " orders/recent " and "/orders/recent" all address the
// same query.
//
// A query may carry a parameter schema written in CUE in a sidecar file next
// to the template (orders.sql + orders.cue). Request parameters are unified
// with the schema before execution:
//
//	customer: string
//	limit?:   int & >0 & <=100
//
// Fields without a "?" are required. The schema is an open struct, so
// parameters it does not mention are allowed.
package savedquery
