// Package inspect serves a development view of a running App.
//
// Routes:
//
//	GET /document   current document markup
//	GET /mounts     mounted roots and their hydration stats, as JSON
//	GET /stats      the most recent flush report, as JSON
//	GET /ws         a websocket stream with one snapshot per flush
//	GET /metrics    Prometheus metrics, when a gatherer is configured
package inspect
