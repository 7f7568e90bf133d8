package native

import (
	"fmt"
	"runtime"
	"unsafe"
)

// SDK is the Library implementation backed by the vendor DLL. Every call
// is a synchronous forward into native code; a call that hangs inside the
// DLL blocks the caller, there is no timeout or cancellation.
//
// The vendor documents no thread-safety contract for concurrent calls.
// Serialization is left to the caller (arx.Control holds a mutex around
// every forwarding call).
type SDK struct {
	handle uintptr
	procs  map[string]uintptr

	handler EventHandler

	// cbCtx mirrors the callback registration struct the DLL expects:
	// a function pointer followed by an opaque context pointer. It must
	// stay reachable for as long as the session is live.
	cbCtx *callbackContext
}

type callbackContext struct {
	callback uintptr
	context  uintptr
}

var _ Library = (*SDK)(nil)

var exports = []string{
	procInit,
	procAddUTF8StringAs,
	procAddFileAs,
	procAddContentAs,
	procSetIndex,
	procSetTagPropertyByID,
	procSetTagsPropertyByClass,
	procSetTagContentByID,
	procSetTagsContentByClass,
	procGetLastError,
	procShutdown,
}

// Open loads the Arx Control library at path and resolves the full
// export table up front, so a truncated or mismatched DLL fails at load
// time instead of on the first call.
func Open(path string) (*SDK, error) {
	handle, err := dlOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load arx control library from %s: %w", path, err)
	}

	s := &SDK{
		handle: handle,
		procs:  make(map[string]uintptr, len(exports)),
	}

	for _, name := range exports {
		addr, err := dlSym(handle, name)
		if err != nil {
			dlClose(handle)
			return nil, fmt.Errorf("missing export %s: %w", name, err)
		}
		s.procs[name] = addr
	}

	return s, nil
}

// Close releases the OS handle to the library. Callers should Shutdown
// first; no SDK method is valid after Close.
func (s *SDK) Close() {
	if s.handle != 0 {
		dlClose(s.handle)
		s.handle = 0
	}
}

// Init registers the event callback and performs the SDK handshake.
//
// The callback trampoline is allocated once per Init and is never freed;
// neither syscall.NewCallback nor purego.NewCallback support release.
func (s *SDK) Init(appID, friendlyName string, handler EventHandler) bool {
	s.handler = handler
	s.cbCtx = &callbackContext{callback: newEventCallback(s.dispatch)}

	app := newWide(appID)
	name := newWide(friendlyName)
	ok := s.callBool(procInit, widePtr(app), widePtr(name), uintptr(unsafe.Pointer(s.cbCtx)))
	runtime.KeepAlive(app)
	runtime.KeepAlive(name)
	return ok
}

func (s *SDK) AddUTF8StringAs(content, filename, mimeType string) bool {
	return s.callWide(procAddUTF8StringAs, content, filename, mimeType)
}

func (s *SDK) AddFileAs(filePath, filename, mimeType string) bool {
	return s.callWide(procAddFileAs, filePath, filename, mimeType)
}

func (s *SDK) AddContentAs(content []byte, filename, mimeType string) bool {
	var ptr uintptr
	if len(content) > 0 {
		ptr = uintptr(unsafe.Pointer(&content[0]))
	}

	f := newWide(filename)
	m := newWide(mimeType)
	ok := s.callBool(procAddContentAs, ptr, uintptr(len(content)), widePtr(f), widePtr(m))
	runtime.KeepAlive(content)
	runtime.KeepAlive(f)
	runtime.KeepAlive(m)
	return ok
}

func (s *SDK) SetIndex(filename string) bool {
	return s.callWide(procSetIndex, filename)
}

func (s *SDK) SetTagPropertyByID(tagID, property, value string) bool {
	return s.callWide(procSetTagPropertyByID, tagID, property, value)
}

func (s *SDK) SetTagsPropertyByClass(tagClass, property, value string) bool {
	return s.callWide(procSetTagsPropertyByClass, tagClass, property, value)
}

func (s *SDK) SetTagContentByID(tagID, content string) bool {
	return s.callWide(procSetTagContentByID, tagID, content)
}

func (s *SDK) SetTagsContentByClass(tagClass, content string) bool {
	return s.callWide(procSetTagsContentByClass, tagClass, content)
}

func (s *SDK) LastError() ErrorCode {
	return ErrorCode(int32(dlCall(s.procs[procGetLastError])))
}

// Shutdown frees the applet resources held by the SDK. The native layer
// treats repeated shutdown as a no-op.
func (s *SDK) Shutdown() {
	dlCall(s.procs[procShutdown])
}

// dispatch is invoked by the DLL on one of its internal threads. It
// decodes the wide-char argument and forwards to the registered handler.
func (s *SDK) dispatch(etype, value, arg, ctx uintptr) uintptr {
	if h := s.handler; h != nil {
		h.HandleEvent(Event{
			Type:  EventType(int32(etype)),
			Value: int(int32(value)),
			Arg:   decodeWide(arg),
		})
	}
	return 0
}

// callWide marshals every argument as a NUL-terminated wide string and
// invokes the named export.
func (s *SDK) callWide(name string, args ...string) bool {
	ws := make([]wideString, len(args))
	ptrs := make([]uintptr, len(args))
	for i, a := range args {
		ws[i] = newWide(a)
		ptrs[i] = widePtr(ws[i])
	}
	ok := s.callBool(name, ptrs...)
	runtime.KeepAlive(ws)
	return ok
}

// The exports return a C bool; only the low byte is meaningful.
func (s *SDK) callBool(name string, args ...uintptr) bool {
	return byte(dlCall(s.procs[name], args...)) != 0
}
