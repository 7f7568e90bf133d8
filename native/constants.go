package native

import "fmt"

// Exported function names of the Arx Control DLL.
// Fixed by the vendor; every symbol is resolved at load time.
const (
	procInit                   = "LogiArxInit"
	procAddUTF8StringAs        = "LogiArxAddUTF8StringAs"
	procAddFileAs              = "LogiArxAddFileAs"
	procAddContentAs           = "LogiArxAddContentAs"
	procSetIndex               = "LogiArxSetIndex"
	procSetTagPropertyByID     = "LogiArxSetTagPropertyById"
	procSetTagsPropertyByClass = "LogiArxSetTagsPropertyByClass"
	procSetTagContentByID      = "LogiArxSetTagContentById"
	procSetTagsContentByClass  = "LogiArxSetTagsContentByClass"
	procGetLastError           = "LogiArxGetLastError"
	procShutdown               = "LogiArxShutdown"
)

// Orientation flags for applet pages.
const (
	OrientationPortrait  = 0x01
	OrientationLandscape = 0x10
)

// EventType identifies the kind of asynchronous device event delivered
// through the registered callback.
type EventType int

const (
	EventFocusActive         EventType = 0x01
	EventFocusInactive       EventType = 0x02
	EventTapOnTag            EventType = 0x04
	EventMobileDeviceArrival EventType = 0x08
	EventMobileDeviceRemoval EventType = 0x10
)

func (e EventType) String() string {
	switch e {
	case EventFocusActive:
		return "focus_active"
	case EventFocusInactive:
		return "focus_inactive"
	case EventTapOnTag:
		return "tap_on_tag"
	case EventMobileDeviceArrival:
		return "device_arrival"
	case EventMobileDeviceRemoval:
		return "device_removal"
	}
	return fmt.Sprintf("event(0x%02x)", int(e))
}

// DeviceType identifies the class of mobile device reported with
// arrival events.
type DeviceType int

const (
	DeviceIPhone        DeviceType = 0x01
	DeviceIPad          DeviceType = 0x02
	DeviceAndroidSmall  DeviceType = 0x03
	DeviceAndroidNormal DeviceType = 0x04
	DeviceAndroidLarge  DeviceType = 0x05
	DeviceAndroidXLarge DeviceType = 0x06
	DeviceAndroidOther  DeviceType = 0x07
)

func (d DeviceType) String() string {
	switch d {
	case DeviceIPhone:
		return "iphone"
	case DeviceIPad:
		return "ipad"
	case DeviceAndroidSmall:
		return "android_small"
	case DeviceAndroidNormal:
		return "android_normal"
	case DeviceAndroidLarge:
		return "android_large"
	case DeviceAndroidXLarge:
		return "android_xlarge"
	case DeviceAndroidOther:
		return "android_other"
	}
	return fmt.Sprintf("device(0x%02x)", int(d))
}

// ErrorCode is the vendor error code returned by LogiArxGetLastError.
type ErrorCode int

const (
	ErrorSuccess            ErrorCode = 0
	ErrorWrongParamFormat   ErrorCode = 1
	ErrorNullNotSupported   ErrorCode = 2
	ErrorWrongFilePath      ErrorCode = 3
	ErrorSDKNotInitialized  ErrorCode = 4
	ErrorSDKInitialized     ErrorCode = 5
	ErrorConnBroken         ErrorCode = 6
	ErrorFailedCreateThread ErrorCode = 7
	ErrorFailedCopyMemory   ErrorCode = 8
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorSuccess:
		return "success"
	case ErrorWrongParamFormat:
		return "wrong_param_format"
	case ErrorNullNotSupported:
		return "null_not_supported"
	case ErrorWrongFilePath:
		return "wrong_file_path"
	case ErrorSDKNotInitialized:
		return "sdk_not_initialized"
	case ErrorSDKInitialized:
		return "sdk_initialized"
	case ErrorConnBroken:
		return "conn_broken"
	case ErrorFailedCreateThread:
		return "failed_create_thread"
	case ErrorFailedCopyMemory:
		return "failed_copy_memory"
	}
	return fmt.Sprintf("error(%d)", int(c))
}

// Event is a device event decoded from the native callback.
//
// Value carries the event-specific payload: a DeviceType for arrival and
// removal events, zero otherwise. Arg carries the tag id for tap events
// and is empty otherwise.
type Event struct {
	Type  EventType
	Value int
	Arg   string
}

// EventHandler receives device events. The native library invokes the
// callback from a thread it manages internally; delivery has no ordering
// or thread-affinity guarantee, so implementations must be safe to call
// from a foreign thread.
type EventHandler interface {
	HandleEvent(ev Event)
}

// EventHandlerFunc adapts a plain function to the EventHandler interface.
type EventHandlerFunc func(ev Event)

func (f EventHandlerFunc) HandleEvent(ev Event) { f(ev) }
