// Package repository provides generic and aggregate-specific repositories on
// top of Bun. Reads go straight to the store while writes are staged on a
// Session and applied together when it is flushed.
package repository
