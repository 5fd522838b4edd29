package errors

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"

	// ErrInvalidArgument represents a rejected order request: bad shares,
	// bad limit price, or a price supplied where none is allowed.
	ErrInvalidArgument ErrorCode = "invalid_argument"
	// ErrUnknownOrderID represents a cancel or modify of an id that is not
	// resting in the book.
	ErrUnknownOrderID ErrorCode = "unknown_order_id"
	// ErrUnknownSymbol represents an operation on an instrument the exchange
	// does not carry.
	ErrUnknownSymbol ErrorCode = "unknown_symbol"
	// ErrInsufficientLiquidity represents a market order larger than the
	// volume resting on the opposing side.
	ErrInsufficientLiquidity ErrorCode = "insufficient_liquidity"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisDelError represents an error when deleting a value from Redis.
	RedisDelError ErrorCode = "redis_del_error"
)

// BaseError is an `error` type containing an array of ErrorDetails.
type BaseError struct {
	details []*ErrorDetails
}

// NewBaseError create BaseError with ErrorDetails
func NewBaseError(details ...*ErrorDetails) *BaseError {
	return &BaseError{details: details}
}

// AddErrorDetails add more ErrorDetails to BaseError
func (b *BaseError) AddErrorDetails(errors ...*ErrorDetails) {
	b.details = append(b.details, errors...)
}

// Details returns the list of ErrorDetails carried by this error.
func (b *BaseError) Details() []*ErrorDetails {
	return b.details
}

// Error is used to implement the Golang `error` interface.
func (b *BaseError) Error() string {
	if len(b.details) == 0 {
		return string(GeneralInternalServerError)
	}
	return b.details[0].Message
}
