// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key header or api_key query) protecting
//     the pass triggers.
//   - rayid: a request id (RayID) for every request, stored in the context and
//     echoed in the X-Ray-ID response header for tracing.
//
// rayid is registered first so every log line of a request carries its id.
package middleware
