// Package integration assembles a ledger node: the disk store, the write
// buffer in front of it, the ledger namespace and the block processor.
//
// Presets bundle storage and history settings into named profiles (lite,
// full, archive).
package integration
