// Package gateway is the single point of contact with the mix backend.
//
// # Transport
//
// [APIService] performs raw GET/POST exchanges against the backend base URL and returns an [APIResponse]
// with status, headers and body (decoded into JSONData when the body is JSON). The `api` CLI commands use
// it directly for debugging.
//
// # Typed Client
//
// [Client] implements [Gateway] on top of [APIService]:
//   - [Client.AuthURL] : GET /api/auth/url
//   - [Client.ExchangeToken] : POST /api/auth/token
//   - [Client.CheckAuth] : GET /api/auth/check
//   - [Client.FetchSource] : POST /api/playlist or /api/recommendations
//   - [Client.LookupFeatures] : POST /api/features
//   - [Client.Solve] : POST /api/solve
//   - [Client.SavePlaylist] : POST /api/save
//
// Each call is a single exchange. Nothing is retried or cached.
//
// # Faults
//
// Every failure is returned as a [*Fault] carrying a [Kind] that names the operation that failed
// (auth, source, enrichment, solve, save), the backend's message when one was sent, and the HTTP status.
// Use [KindOf] and [IsKind] to branch on it. Faults also match [shared.ErrAPIRequest] with errors.Is.
//
// # Authorization
//
// When a static API token is configured, [NewHTTPClient] returns an [oauth2] client that attaches it
// as a bearer token to every request.
package gateway
