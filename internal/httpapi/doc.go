// Package httpapi exposes the circulation commands and queries over HTTP.
//
// Every command is a POST (or DELETE for canceled holds) on the item it
// targets and answers with the resulting event type and item status. The
// X-Request-ID header becomes the correlation id of the events the request
// appends and is echoed on the response.
package httpapi
