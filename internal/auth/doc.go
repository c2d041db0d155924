// Package auth resolves the owner of each request and carries the session
// used for flash messages.
//
// It supports two modes:
//   - "none": no authentication (default), every request acts as DefaultUserID
//   - "token": requests carry an API token created with the create-user command
//
// # Configuration
//
//	AUTH_MODE=none   # Default
//	AUTH_MODE=token  # Requires "Authorization: Bearer <token>" or "X-Api-Token"
//	SESSION_LIFETIME=24h
//	AUTH_SECURE_COOKIES=true
//
// HTTP basic-auth values sent with a request are not used for identity. They
// are captured and forwarded to the content extractor, which may sit behind
// the same basic-auth protection as the application.
//
// # Usage
//
//	middleware := auth.NewMiddleware(usersRepo, cfg.Auth)
//	router.Use(middleware.Handler())
//
//	userID := auth.GetUserID(c)
//	creds := auth.GetCredentials(c)
package auth
