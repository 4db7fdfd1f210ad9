// Package api is the HTTP surface: ingestion, retrieval, and direct graph
// exploration over JSON.
package api
