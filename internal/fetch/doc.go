// Package fetch retrieves the documents and stylesheets a11yscan audits.
//
// A location is either an http(s) URL or a local path (plain or file://).
// Remote resources are read over HTTP with a configurable timeout, User-Agent
// and body size limit. Cookies and headers configured for a site are only
// sent to that site's host, never to third-party stylesheet origins.
package fetch
