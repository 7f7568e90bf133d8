//go:build !windows

package native

import (
	"unsafe"

	"github.com/ebitengine/purego"
)

// wideString is a NUL-terminated wchar_t buffer. Outside Windows wchar_t
// is 32 bits and holds one rune per element.
type wideString []uint32

func dlOpen(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

func dlClose(handle uintptr) {
	_ = purego.Dlclose(handle)
}

func dlSym(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

func dlCall(fn uintptr, args ...uintptr) uintptr {
	ret, _, _ := purego.SyscallN(fn, args...)
	return ret
}

func newEventCallback(fn func(etype, value, arg, ctx uintptr) uintptr) uintptr {
	return purego.NewCallback(fn)
}

func newWide(s string) wideString {
	rs := []rune(s)
	w := make(wideString, len(rs)+1)
	for i, r := range rs {
		w[i] = uint32(r)
	}
	return w
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
	var rs []rune
	for off := uintptr(0); ; off += 4 {
		c := *(*uint32)(unsafe.Pointer(p + off))
		if c == 0 {
			break
		}
		rs = append(rs, rune(c))
	}
	return string(rs)
}
