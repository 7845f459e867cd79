// Package auth guards the admin API.
//
// Two modes are supported:
//   - "none": no authentication, every caller is treated as an admin (default)
//   - "local": admin users stored in the database, signed in with a session
//     cookie (CSRF protected) or an API bearer token
//
// # Configuration
//
//	AUTH_MODE=local
//	AUTH_SESSION_SECRET=<hex-32-bytes>     # Generated at startup if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_TOKEN_EXPIRY=720h
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=true
//	AUTH_MAX_LOGIN_ATTEMPTS=5
//	AUTH_LOCKOUT_DURATION=30m
//
// # Usage
//
//	service := auth.NewService(users.NewRepository(db), cfg.Auth)
//	middleware := auth.NewMiddleware(service, sessions, cfg.Auth)
//	admin := router.Group("/api", middleware.Handler(), middleware.RequireRole(entities.UserRoleAdmin))
package auth
