package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups the endpoint handlers wired in main.
type HandlerBundle struct {
	// Dialogue endpoints.
	StartSession    gin.HandlerFunc
	SubmitUtterance gin.HandlerFunc
	EndSession      gin.HandlerFunc

	// Voice endpoints.
	Transcribe gin.HandlerFunc
}
