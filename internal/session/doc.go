// Package session keeps per-visitor state for the served dashboard. Every
// session owns its dataset and its randomness source; nothing derived from one
// session is visible to another.
package session
