// Package redis connects the shared cache backend with startup retries and
// exposes a health probe. The server treats Redis as optional: when no URL
// is configured the cache falls back to the in-process implementation.
package redis
