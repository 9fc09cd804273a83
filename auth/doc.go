// Package auth registers principals and authenticates them by password,
// issuing a signed access token on success.
//
// Subpackages:
//   - jwt: access token signing and verification
//   - password: password hashing (argon2id, bcrypt)
//   - authctx: request-scoped principal propagation
//   - guard: per-route authentication decisions
//
// Failures are *errors.AppError values: INVALID_INPUT, CONFLICT (with
// details.field), NOT_FOUND, UNAUTHORIZED, or DATABASE_ERROR/INTERNAL_ERROR.
package auth
