package utils

import "github.com/gin-gonic/gin"

// ErrorResponse is the envelope for failed requests.
func ErrorResponse(message string) gin.H {
	return gin.H{
		"success": false,
		"message": message,
	}
}

// SuccessResponse wraps data in the standard envelope. A nil data field is omitted.
func SuccessResponse(message string, data interface{}) gin.H {
	resp := gin.H{
		"success": true,
		"message": message,
	}
	if data != nil {
		resp["data"] = data
	}
	return resp
}

// ValidationResponse reports per-field errors alongside the failure message.
func ValidationResponse(message string, errors map[string]string) gin.H {
	resp := ErrorResponse(message)
	resp["errors"] = errors
	return resp
}
