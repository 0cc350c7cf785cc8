// Package server assembles the HTTP front of the proxy: route registration,
// the middleware chain, and graceful lifecycle management around net/http.
package server
