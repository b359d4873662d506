package errors

import "net/http"

// httpStatusMapping maps internal error codes to HTTP status codes.
var httpStatusMapping = map[ErrorCode]int{
	ErrCodeInvalidParameter:   http.StatusBadRequest,
	ErrCodeInvalidZipcode:     http.StatusBadRequest,
	ErrCodeInvalidPayload:     http.StatusBadRequest,
	ErrCodeDealNotFound:       http.StatusNotFound,
	ErrCodeFundNotFound:       http.StatusNotFound,
	ErrCodeGPNotFound:         http.StatusNotFound,
	ErrCodeMarketDataNotFound: http.StatusNotFound,
	ErrCodeCensusAPIFailed:    http.StatusBadGateway,
	ErrCodeRentCastAPIFailed:  http.StatusBadGateway,
	ErrCodeFREDAPIFailed:      http.StatusBadGateway,
	ErrCodeProviderTimeout:    http.StatusGatewayTimeout,
	ErrCodeDatabaseFailed:     http.StatusInternalServerError,
	ErrCodeCacheFailed:        http.StatusInternalServerError,
	ErrCodeSearchIndexFailed:  http.StatusInternalServerError,
	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeInternal:           http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status code for an error. Unknown errors and
// non-StandardError values map to 500.
func HTTPStatus(err error) int {
	se, ok := AsStandardError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if status, exists := httpStatusMapping[se.Code]; exists {
		return status
	}
	return http.StatusInternalServerError
}

// IsNotFound reports whether the error is one of the *_NOT_FOUND codes.
func IsNotFound(err error) bool {
	return HTTPStatus(err) == http.StatusNotFound
}
