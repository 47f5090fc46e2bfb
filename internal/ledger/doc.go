// Package ledger records outstanding ring reservations in the order they were
// made. A ring in strict commit mode consults the ledger so that Commit only
// closes whole reservations from the front and Unreserve only releases whole
// reservations from the back.
//
// The ledger is not synchronised; it shares the owning ring's single-writer
// discipline. Released entries are kept on a free list so that steady-state
// reserve/commit cycles do not allocate.
package ledger
