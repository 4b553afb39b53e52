// Package errors provides the HTTP error vocabulary of the API: APIError for
// coded client errors, RFC 7807 ProblemDetails for rendered responses, an
// ErrorHandler that maps domain sentinels onto problem types, and AppError
// for typed internal failures (storage, parsing, configuration).
package errors
