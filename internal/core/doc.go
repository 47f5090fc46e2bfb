// Package core serialises commits across several rings.
//
// A group commit publishes the same element count on every registered bank or
// on none of them. Each bank first prepares (validates) the commit; only when
// every bank prepared successfully and the context is still live are the
// publish callbacks run. Otherwise the abort callbacks of the prepared banks run
// in reverse order. A publish that fails after a clean prepare is reported and
// does not advance the version.
package core
