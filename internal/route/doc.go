// Package route derives registry lookup keys from request paths.
//
// The first path segment names the project; everything after it, leading
// slash included, is the logical name of the query:
//
//	/shop/orders/recent  ->  project "shop", name "/orders/recent"
//
// Matching is exact. A remainder that is not a registered name is a miss;
// there is no fallback to shorter prefixes.
package route
