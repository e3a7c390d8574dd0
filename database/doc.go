// Package database provides connection management for MySQL, PostgreSQL and
// SQLite, versioned migrations with seeding, query hooks, driver error
// classification and health checks built on top of Bun.
package database
