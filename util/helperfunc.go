package util

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// genericServerError is the only error text clients see for 5xx responses.
const genericServerError = "internal server error"

type APIResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Msg     string      `json:"msg"`
	Data    interface{} `json:"data"`
}

type APIErrorParams struct {
	Msg string
	Err error
}

type APISuccessParams struct {
	Msg  string
	Data interface{}
}

func errorResponse(params APIErrorParams) APIResponse {
	errText := ""
	if params.Err != nil {
		errText = params.Err.Error()
	}
	return APIResponse{
		Success: false,
		Error:   errText,
		Msg:     params.Msg,
		Data:    map[string]interface{}{},
	}
}

// CallErrorNotFound is for return API response not found
func CallErrorNotFound(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusNotFound, errorResponse(params))
}

// CallUserError is for return error from user side
func CallUserError(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusBadRequest, errorResponse(params))
}

// CallConflict is for return API response when the request clashes with existing data
func CallConflict(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusConflict, errorResponse(params))
}

// CallUserNotAuthorized is for return API response with status code 401
func CallUserNotAuthorized(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusUnauthorized, errorResponse(params))
}

// CallForbidden is for return API response with status code 403
func CallForbidden(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusForbidden, errorResponse(params))
}

// CallTooManyRequests is for return API response with status code 429
func CallTooManyRequests(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusTooManyRequests, errorResponse(params))
}

// CallServerError logs the underlying error and returns a generic 500 to the client.
func CallServerError(c *gin.Context, params APIErrorParams) {
	Log().Error().
		Err(params.Err).
		Str("request_id", c.GetString("request_id")).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg(params.Msg)
	c.JSON(http.StatusInternalServerError, APIResponse{
		Success: false,
		Error:   genericServerError,
		Msg:     params.Msg,
		Data:    map[string]interface{}{},
	})
}

// CallError picks the response code for err from the error taxonomy.
func CallError(c *gin.Context, params APIErrorParams) {
	switch MapErrorToStatus(params.Err) {
	case http.StatusBadRequest:
		CallUserError(c, params)
	case http.StatusUnauthorized:
		CallUserNotAuthorized(c, params)
	case http.StatusForbidden:
		CallForbidden(c, params)
	case http.StatusNotFound:
		CallErrorNotFound(c, params)
	case http.StatusConflict:
		CallConflict(c, params)
	case http.StatusTooManyRequests:
		CallTooManyRequests(c, params)
	default:
		CallServerError(c, params)
	}
}

// CallSuccessOK is for return API response with status code 200, you need to specify msg, and data as function parameter
func CallSuccessOK(c *gin.Context, params APISuccessParams) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Msg:     params.Msg,
		Data:    params.Data,
	})
}

// NormalizeName trims leading/trailing whitespace and collapses internal runs of spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Validationf wraps ErrValidation with a client-facing message.
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
