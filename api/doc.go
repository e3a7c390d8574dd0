// Package api exposes the brand and product services over HTTP with chi.
// Every reply uses the {"data": ...} or {"error": {...}} envelope.
package api
