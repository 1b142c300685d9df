// Package requestid tags every request with a correlation ID. A valid
// client-supplied X-Request-ID is reused, anything else is replaced with a
// fresh UUID; the ID travels in the context, the response header, and every
// log record via the logger extractor.
package requestid
