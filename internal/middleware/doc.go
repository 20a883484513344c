// Package middleware provides HTTP middleware for the survey API and the
// sheet receiver.
//
// # Available Middleware
//
//   - RequestID: assigns or propagates X-Request-ID
//   - Logger: one structured log line per request
//   - Recovery: turns panics into a problem+json 500
//   - CORS: origin allow-list for the survey frontend
//   - MaxBody: request body cap
//   - Compress: gzip responses
//   - RateLimit: token bucket per client
//   - Idempotency: replays responses for repeated Idempotency-Key requests
//
// Middlewares compose with Chain, outermost first:
//
//	h := middleware.Chain(mux,
//	    middleware.RequestID,
//	    middleware.Logger(logger),
//	    middleware.Recovery(logger),
//	)
//
// # Context Values
//
//   - GetRequestID(ctx): Returns unique request identifier
//   - ClientKey(r): Returns the socket peer, the default caller key for
//     limits and idempotency
//   - ProxyClientKey(trusted): Caller key that honors X-Forwarded-For from
//     trusted proxies only
package middleware
