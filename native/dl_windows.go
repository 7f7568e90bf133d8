//go:build windows

package native

import (
	"fmt"
	"syscall"
	"unicode/utf16"
	"unsafe"
)

// wideString is a NUL-terminated wchar_t buffer. On Windows wchar_t is
// 16 bits and UTF-16 encoded.
type wideString []uint16

func dlOpen(path string) (uintptr, error) {
	h, err := syscall.LoadLibrary(path)
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

func dlClose(handle uintptr) {
	syscall.FreeLibrary(syscall.Handle(handle))
}

func dlSym(handle uintptr, name string) (uintptr, error) {
	addr, err := syscall.GetProcAddress(syscall.Handle(handle), name)
	if err != nil {
		return 0, err
	}
	if addr == 0 {
		return 0, fmt.Errorf("symbol %q not found", name)
	}
	return addr, nil
}

func dlCall(fn uintptr, args ...uintptr) uintptr {
	ret, _, _ := syscall.SyscallN(fn, args...)
	return ret
}

// newEventCallback wraps fn in a trampoline the DLL can invoke. The SDK
// callback is cdecl; NewCallbackCDecl matters on 386 and is identical to
// NewCallback on 64-bit targets.
func newEventCallback(fn func(etype, value, arg, ctx uintptr) uintptr) uintptr {
	return syscall.NewCallbackCDecl(fn)
}

func newWide(s string) wideString {
	return utf16.Encode([]rune(s + "\x00"))
}

func widePtr(w wideString) uintptr {
	if len(w) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&w[0]))
}

func decodeWide(p uintptr) string {
	if p == 0 {
		return ""
	}
	var u []uint16
	for off := uintptr(0); ; off += 2 {
		c := *(*uint16)(unsafe.Pointer(p + off))
		if c == 0 {
			break
		}
		u = append(u, c)
	}
	return string(utf16.Decode(u))
}
