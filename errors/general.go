package errors

const (
	UnknownErrorCode             = 100_001
	RequestBodyInvalidErrorCode  = 100_002
	RequestBodyTooLargeErrorCode = 100_003
	RateLimitExceededErrorCode   = 100_004
	RouteNotFoundErrorCode       = 100_005
)

// UnknownError is returned to callers in place of unexpected failures. The cause is only logged.
var UnknownError = new(UnknownErrorCode, "UnknownError", "Something went wrong while processing the request")

var RequestBodyInvalidError = new(RequestBodyInvalidErrorCode, "RequestBodyInvalid", "Request body is not valid JSON: %s")

var RequestBodyTooLargeError = new(RequestBodyTooLargeErrorCode, "RequestBodyTooLarge", "Request body must not be larger than %d bytes")

var RateLimitExceededError = new(RateLimitExceededErrorCode, "RateLimitExceeded", "Too many requests, please try again after %s")

var RouteNotFoundError = new(RouteNotFoundErrorCode, "RouteNotFound", "Route %s %s is not exist")
