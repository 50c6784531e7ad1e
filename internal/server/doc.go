// Package server runs the short-lived HTTP listener that receives the OAuth2 redirect.
//
// # Router Infrastructure
//
// [BasicRouter] wraps [http.ServeMux] with method filtering and a [Middleware] stack.
// Middleware runs in the order it was added. A [Handler] is registered for GET on each of its routes.
// [LoggingMiddleware] reports every request to a [log.Logger].
//
// # Callback Handler
//
// [CallbackHandler] serves the path of the configured redirect URI. It validates the state parameter
// (CSRF protection) and hands the authorization code back through a channel. The code exchange itself
// is left to the caller, which owns the [oauth2.Config].
//
// It only processes one callback to prevent replay attacks. Later requests get a 400.
//
// # Waiting for the code
//
// [WaitForCode] starts an [http.Server] on the listen address, waits for the callback, a timeout,
// context cancellation or a server failure, and shuts the server down before returning.
package server
