// Package binder decodes JSON request bodies and writes JSON responses for
// the API modules. Requests are bound strictly (unknown fields rejected,
// bounded body size); responses carry either the payload or an
// {"error": ...} envelope.
package binder
