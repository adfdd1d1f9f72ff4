// Package memory keeps the whole marketplace state in process.
//
// Every repository in this package is a view over one Store. Store.WithTx
// holds the store lock for the duration of the callback and records an undo
// entry for each mutation; if the callback fails, the entries are replayed in
// reverse so no partial change is ever visible. Calls made outside WithTx
// take the lock for the single call.
package memory
