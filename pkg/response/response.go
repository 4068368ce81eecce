package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// All endpoints answer with a flat JSON envelope: successful responses
// carry {"success":true, ...payload}, failures {"success":false,"message":...}.

// OK sends a 200 response with the payload merged into the envelope
func OK(c *gin.Context, data gin.H) {
	send(c, http.StatusOK, data)
}

// Created sends a 201 response with the payload merged into the envelope
func Created(c *gin.Context, data gin.H) {
	send(c, http.StatusCreated, data)
}

func send(c *gin.Context, status int, data gin.H) {
	payload := gin.H{"success": true}
	for k, v := range data {
		payload[k] = v
	}
	c.JSON(status, payload)
}

// Fail sends an error response
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// BadRequest sends a 400 error response
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 error response
func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, message)
}

// Forbidden sends a 403 error response
func Forbidden(c *gin.Context, message string) {
	Fail(c, http.StatusForbidden, message)
}

// NotFound sends a 404 error response
func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, message)
}

// TooManyRequests sends a 429 error response
func TooManyRequests(c *gin.Context, message string) {
	Fail(c, http.StatusTooManyRequests, message)
}

// InternalError sends a 500 error response
func InternalError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, message)
}

// ValidationFailed sends a 400 response carrying per-field messages
// alongside a joined summary message
func ValidationFailed(c *gin.Context, message string, fields interface{}) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": message,
		"errors":  fields,
	})
}
