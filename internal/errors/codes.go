package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrNotImplemented  ErrorCode = "not_implemented"
	ErrUnavailable     ErrorCode = "service_unavailable"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"
	ErrInvalidDuration ErrorCode = "invalid_duration"
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Capability errors
	ErrResourceUnavailable ErrorCode = "resource_unavailable"
	ErrResourceBusy        ErrorCode = "resource_busy"
	ErrResourceNotFound    ErrorCode = "resource_not_found"
	ErrAcquisitionRace     ErrorCode = "acquisition_race"
	ErrReleaseFailed       ErrorCode = "release_failed"

	// Lifecycle errors
	ErrAlreadyRunning   ErrorCode = "already_running"
	ErrNotRunning       ErrorCode = "not_running"
	ErrDeviceLost       ErrorCode = "device_lost"
	ErrInvalidOperation ErrorCode = "invalid_operation"

	// Operation errors
	ErrOperationFailed ErrorCode = "operation_failed"
	ErrTimeout         ErrorCode = "operation_timeout"
	ErrShutdownFailed  ErrorCode = "shutdown_failed"
	ErrInitFailed      ErrorCode = "initialization_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:            "Internal error occurred",
	ErrInvalidArgument:     "Invalid argument provided",
	ErrNotImplemented:      "Operation not implemented",
	ErrUnavailable:         "Service unavailable",
	ErrInvalidConfig:       "Invalid configuration",
	ErrBindFlags:           "Failed to bind flags",
	ErrReadConfig:          "Failed to read configuration",
	ErrInvalidInterval:     "Invalid interval value",
	ErrInvalidDuration:     "Invalid duration value",
	ErrInvalidLogLevel:     "Invalid log level",
	ErrResourceUnavailable: "Device is unavailable",
	ErrResourceBusy:        "Device is in use by another test",
	ErrResourceNotFound:    "Device not found",
	ErrAcquisitionRace:     "Device request was superseded",
	ErrReleaseFailed:       "Failed to release device",
	ErrAlreadyRunning:      "Test is already running",
	ErrNotRunning:          "Test is not running",
	ErrDeviceLost:          "Device stopped responding",
	ErrInvalidOperation:    "Invalid operation",
	ErrOperationFailed:     "Operation failed",
	ErrTimeout:             "Operation timed out",
	ErrShutdownFailed:      "Shutdown failed",
	ErrInitFailed:          "Initialization failed",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
