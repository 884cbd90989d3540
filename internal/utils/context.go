// Package utils provides shared utility functions and constants
package utils

// ContextKeyLogger is the key used to store the request-scoped logger in the echo context
const ContextKeyLogger = "logger"
