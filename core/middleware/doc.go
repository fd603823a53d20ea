// Package middleware contains HTTP middleware for the dashboard's Fiber application.
//
// # Components
//
//   - RayID: assigns a unique request id to every incoming request, stores it in the
//     context locals for logger.WithRayID and echoes it in the X-Ray-ID header.
package middleware
