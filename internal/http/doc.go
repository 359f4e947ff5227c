// Package http provides HTTP handlers and middleware for the training dashboard API.
//
// The router exposes the following endpoints:
//   - POST /api/auth/login: issues a session token. Body: {"username","password"}.
//     Response: {"token","user":{"id","username","role","active","created_at"}} with
//     the token also surfaced via the `X-Session-Token` header and a
//     `session_token` cookie.
//   - POST /api/auth/logout: destroys the session token extracted from the
//     Authorization header or session cookie. Always returns 204 No Content.
//   - GET /api/auth/me: returns the account behind the current token.
//   - GET /api/users, POST /api/users, PUT /api/users/{id}, DELETE /api/users/{id}:
//     account management exchanging the `accountDTO` payload defined in
//     account_handler.go. Listing requires the manager role, mutations require admin.
//   - GET /api/employees, POST /api/employees, PUT /api/employees/{id},
//     DELETE /api/employees/{id}: training record endpoints exchanging the
//     `recordDTO` payload defined in record_handler.go. Deleting requires the
//     manager role; everything else is open to any authenticated account.
//   - GET /healthz: liveness probe.
//
// Handlers only extract the bearer token and hand it to the service; role
// checks live in the application layer. Request/response DTOs live alongside
// their respective handlers so tests and documentation share the same ground truth.
package http
