// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"errors"
	"fmt"
)

// Result is an XrResult code. Negative values are failures, zero is
// success and positive values are qualified successes.
//
// Result implements error so that failures propagate through ordinary
// Go error returns.
type Result int32

// Success codes.
const (
	Success                Result = 0
	TimeoutExpired         Result = 1
	SessionLossPending     Result = 3
	EventUnavailable       Result = 4
	SpaceBoundsUnavailable Result = 7
	SessionNotFocused      Result = 8
	FrameDiscarded         Result = 9
)

// Failure codes.
const (
	ErrorValidationFailure                Result = -1
	ErrorRuntimeFailure                   Result = -2
	ErrorOutOfMemory                      Result = -3
	ErrorAPIVersionUnsupported            Result = -4
	ErrorInitializationFailed             Result = -6
	ErrorFunctionUnsupported              Result = -7
	ErrorFeatureUnsupported               Result = -8
	ErrorExtensionNotPresent              Result = -9
	ErrorLimitReached                     Result = -10
	ErrorSizeInsufficient                 Result = -11
	ErrorHandleInvalid                    Result = -12
	ErrorInstanceLost                     Result = -13
	ErrorSessionRunning                   Result = -14
	ErrorSessionNotRunning                Result = -16
	ErrorSessionLost                      Result = -17
	ErrorSystemInvalid                    Result = -18
	ErrorPathInvalid                      Result = -19
	ErrorLayerInvalid                     Result = -23
	ErrorSwapchainRectInvalid             Result = -25
	ErrorSwapchainFormatUnsupported       Result = -26
	ErrorActionTypeMismatch               Result = -27
	ErrorSessionNotReady                  Result = -28
	ErrorSessionNotStopping               Result = -29
	ErrorTimeInvalid                      Result = -30
	ErrorReferenceSpaceUnsupported        Result = -31
	ErrorFormFactorUnsupported            Result = -34
	ErrorFormFactorUnavailable            Result = -35
	ErrorCallOrderInvalid                 Result = -37
	ErrorGraphicsDeviceInvalid            Result = -38
	ErrorPoseInvalid                      Result = -39
	ErrorIndexOutOfRange                  Result = -40
	ErrorViewConfigurationTypeUnsupported Result = -41
	ErrorActionsetNotAttached             Result = -46
	ErrorActionsetsAlreadyAttached        Result = -47
	ErrorGraphicsRequirementsCallMissing  Result = -50
	ErrorRuntimeUnavailable               Result = -51
)

var resultNames = map[Result]string{
	Success:                               "XR_SUCCESS",
	TimeoutExpired:                        "XR_TIMEOUT_EXPIRED",
	SessionLossPending:                    "XR_SESSION_LOSS_PENDING",
	EventUnavailable:                      "XR_EVENT_UNAVAILABLE",
	SpaceBoundsUnavailable:                "XR_SPACE_BOUNDS_UNAVAILABLE",
	SessionNotFocused:                     "XR_SESSION_NOT_FOCUSED",
	FrameDiscarded:                        "XR_FRAME_DISCARDED",
	ErrorValidationFailure:                "XR_ERROR_VALIDATION_FAILURE",
	ErrorRuntimeFailure:                   "XR_ERROR_RUNTIME_FAILURE",
	ErrorOutOfMemory:                      "XR_ERROR_OUT_OF_MEMORY",
	ErrorAPIVersionUnsupported:            "XR_ERROR_API_VERSION_UNSUPPORTED",
	ErrorInitializationFailed:             "XR_ERROR_INITIALIZATION_FAILED",
	ErrorFunctionUnsupported:              "XR_ERROR_FUNCTION_UNSUPPORTED",
	ErrorFeatureUnsupported:               "XR_ERROR_FEATURE_UNSUPPORTED",
	ErrorExtensionNotPresent:              "XR_ERROR_EXTENSION_NOT_PRESENT",
	ErrorLimitReached:                     "XR_ERROR_LIMIT_REACHED",
	ErrorSizeInsufficient:                 "XR_ERROR_SIZE_INSUFFICIENT",
	ErrorHandleInvalid:                    "XR_ERROR_HANDLE_INVALID",
	ErrorInstanceLost:                     "XR_ERROR_INSTANCE_LOST",
	ErrorSessionRunning:                   "XR_ERROR_SESSION_RUNNING",
	ErrorSessionNotRunning:                "XR_ERROR_SESSION_NOT_RUNNING",
	ErrorSessionLost:                      "XR_ERROR_SESSION_LOST",
	ErrorSystemInvalid:                    "XR_ERROR_SYSTEM_INVALID",
	ErrorPathInvalid:                      "XR_ERROR_PATH_INVALID",
	ErrorLayerInvalid:                     "XR_ERROR_LAYER_INVALID",
	ErrorSwapchainRectInvalid:             "XR_ERROR_SWAPCHAIN_RECT_INVALID",
	ErrorSwapchainFormatUnsupported:       "XR_ERROR_SWAPCHAIN_FORMAT_UNSUPPORTED",
	ErrorActionTypeMismatch:               "XR_ERROR_ACTION_TYPE_MISMATCH",
	ErrorSessionNotReady:                  "XR_ERROR_SESSION_NOT_READY",
	ErrorSessionNotStopping:               "XR_ERROR_SESSION_NOT_STOPPING",
	ErrorTimeInvalid:                      "XR_ERROR_TIME_INVALID",
	ErrorReferenceSpaceUnsupported:        "XR_ERROR_REFERENCE_SPACE_UNSUPPORTED",
	ErrorFormFactorUnsupported:            "XR_ERROR_FORM_FACTOR_UNSUPPORTED",
	ErrorFormFactorUnavailable:            "XR_ERROR_FORM_FACTOR_UNAVAILABLE",
	ErrorCallOrderInvalid:                 "XR_ERROR_CALL_ORDER_INVALID",
	ErrorGraphicsDeviceInvalid:            "XR_ERROR_GRAPHICS_DEVICE_INVALID",
	ErrorPoseInvalid:                      "XR_ERROR_POSE_INVALID",
	ErrorIndexOutOfRange:                  "XR_ERROR_INDEX_OUT_OF_RANGE",
	ErrorViewConfigurationTypeUnsupported: "XR_ERROR_VIEW_CONFIGURATION_TYPE_UNSUPPORTED",
	ErrorActionsetNotAttached:             "XR_ERROR_ACTIONSET_NOT_ATTACHED",
	ErrorActionsetsAlreadyAttached:        "XR_ERROR_ACTIONSETS_ALREADY_ATTACHED",
	ErrorGraphicsRequirementsCallMissing:  "XR_ERROR_GRAPHICS_REQUIREMENTS_CALL_MISSING",
	ErrorRuntimeUnavailable:               "XR_ERROR_RUNTIME_UNAVAILABLE",
}

// String returns the OpenXR name of the code.
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("XrResult(%d)", int32(r))
}

// Error implements the error interface.
func (r Result) Error() string { return "xr: " + r.String() }

// Succeeded reports whether r is XR_SUCCESS or a qualified success.
func (r Result) Succeeded() bool { return r >= 0 }

// Failed reports whether r is a failure code.
func (r Result) Failed() bool { return r < 0 }

// ResultOf recovers the Result carried by err.
// A nil error is Success; an error that does not wrap a Result is
// reported as ErrorRuntimeFailure.
func ResultOf(err error) Result {
	if err == nil {
		return Success
	}
	var r Result
	if errors.As(err, &r) {
		return r
	}
	return ErrorRuntimeFailure
}

// Succeeded reports whether err is nil or carries a qualified success code.
func Succeeded(err error) bool { return ResultOf(err).Succeeded() }

// IsSessionLoss reports whether err says the session is gone or going away.
func IsSessionLoss(err error) bool {
	switch ResultOf(err) {
	case ErrorSessionLost, SessionLossPending:
		return true
	}
	return false
}

// IsInstanceLoss reports whether err invalidates the instance itself.
func IsInstanceLoss(err error) bool {
	return ResultOf(err) == ErrorInstanceLost
}

// IsRuntimeUnavailable reports whether err says the runtime cannot be
// reached or failed internally.
func IsRuntimeUnavailable(err error) bool {
	var r Result
	if !errors.As(err, &r) {
		return false
	}
	return r == ErrorRuntimeUnavailable || r == ErrorRuntimeFailure
}
