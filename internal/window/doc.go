// Package window computes the physical ranges that back a logical window of a
// fixed-capacity ring. A window that crosses the end of the backing store is
// returned as two ranges: the tail of the store followed by its head.
package window
