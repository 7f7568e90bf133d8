package arx

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/glowkit-labs/arxcontrol/native"
)

// Wide-char field limits the SDK enforces on its own side. Longer values
// are truncated here, with a warning, before crossing into native code.
const (
	limitName = 128
	limitPath = 256
)

// The SDK needs a moment after a successful handshake before content
// calls are reliable.
const defaultSettleDelay = time.Second

// Control wraps one Arx Control session and applies the shared call
// policy to every forward: a zero native return caused by a double-init
// race is suppressed, an ordinary failure is logged and returned as a
// boolean, and a broken connection tears the session down.
//
// The vendor library documents no thread-safety contract, so Control
// serializes every forwarding call behind an internal mutex. Calls block
// until the native layer returns; there is no timeout or cancellation.
// Events are delivered on a thread the native library manages, with no
// ordering or affinity guarantee.
type Control struct {
	lib          native.Library
	appID        string
	friendlyName string
	handler      native.EventHandler

	mu     sync.Mutex
	broken bool

	pathOverride string
	resolver     *native.Resolver
	settleDelay  time.Duration
	logger       *log.Logger
}

// Option configures a Control at construction time.
type Option func(*Control)

// WithLogger replaces the default logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Control) { c.logger = logger }
}

// WithLibraryPath loads the Arx Control library from an explicit path
// instead of probing the default install location.
func WithLibraryPath(path string) Option {
	return func(c *Control) { c.pathOverride = path }
}

// WithResolver replaces the library path resolution strategy.
func WithResolver(r *native.Resolver) Option {
	return func(c *Control) { c.resolver = r }
}

// WithLibrary injects an already-open library, bypassing path resolution
// and loading entirely. Tests use this to substitute a fake.
func WithLibrary(lib native.Library) Option {
	return func(c *Control) { c.lib = lib }
}

// WithSettleDelay overrides the pause taken after a successful Init.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Control) { c.settleDelay = d }
}

// New creates a Control for the given application identifier and display
// name, resolving and loading the native library unless one was injected.
// Both names are capped at 128 characters. Returns an error wrapping
// native.ErrNotFound when no library path resolves.
func New(appID, friendlyName string, handler native.EventHandler, opts ...Option) (*Control, error) {
	c := &Control{
		handler:     handler,
		resolver:    native.NewResolver(),
		settleDelay: defaultSettleDelay,
		logger:      log.New(os.Stdout, "[ARX] ", log.LstdFlags|log.Lmsgprefix),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.appID = c.truncate(appID, limitName, "app id")
	c.friendlyName = c.truncate(friendlyName, limitName, "friendly name")

	if c.lib == nil {
		path, err := c.resolver.Resolve(c.pathOverride)
		if err != nil {
			return nil, err
		}
		sdk, err := native.Open(path)
		if err != nil {
			return nil, err
		}
		c.lib = sdk
	}

	return c, nil
}

// Init registers the event handler with the SDK and performs the
// handshake. On success it pauses for the settle delay before returning,
// per the vendor contract.
func (c *Control) Init() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken {
		return false, ErrConnectionBroken
	}

	ok, err := c.checkCall("LogiArxInit", c.lib.Init(c.appID, c.friendlyName, c.handler))
	if err != nil {
		return false, err
	}
	if ok {
		time.Sleep(c.settleDelay)
	}
	return ok, nil
}

// AddStringAs sends a UTF-8 string to the device, to be referenced as
// filename (capped at 256 characters) in the applet.
func (c *Control) AddStringAs(content, filename, mimeType string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken {
		return false, ErrConnectionBroken
	}
	return c.checkCall("LogiArxAddUTF8StringAs",
		c.lib.AddUTF8StringAs(content, c.truncate(filename, limitPath, "filename"), mimeType))
}

// AddFileAs sends a local file to the device. Both the local path and
// the applet-side filename are capped at 256 characters.
func (c *Control) AddFileAs(filePath, filename, mimeType string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken {
		return false, ErrConnectionBroken
	}
	return c.checkCall("LogiArxAddFileAs",
		c.lib.AddFileAs(
			c.truncate(filePath, limitPath, "file path"),
			c.truncate(filename, limitPath, "filename"),
			mimeType))
}

// AddContentAs sends a block of memory to the device, to be referenced
// as filename (capped at 256 characters) in the applet.
func (c *Control) AddContentAs(content []byte, filename, mimeType string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken {
		return false, ErrConnectionBroken
	}
	return c.checkCall("LogiArxAddContentAs",
		c.lib.AddContentAs(content, c.truncate(filename, limitPath, "filename"), mimeType))
}

// SetIndex selects which page (capped at 256 characters) is displayed.
// The first call on a valid file brings the applet to the foreground.
func (c *Control) SetIndex(filename string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken {
		return false, ErrConnectionBroken
	}
	return c.checkCall("LogiArxSetIndex",
		c.lib.SetIndex(c.truncate(filename, limitPath, "index filename")))
}

// SetTagPropertyByID updates a property on the tag with the given id in
// the applet pages. Tag id and property name are capped at 128
// characters, the value at 256. The SDK reports success when no tag
// matches; every matching tag is updated.
func (c *Control) SetTagPropertyByID(tagID, property, value string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken {
		return false, ErrConnectionBroken
	}
	return c.checkCall("LogiArxSetTagPropertyById",
		c.lib.SetTagPropertyByID(
			c.truncate(tagID, limitName, "tag id"),
			c.truncate(property, limitName, "property"),
			c.truncate(value, limitPath, "property value")))
}

// SetTagsPropertyByClass updates a property on every tag of the given
// class. Limits match SetTagPropertyByID.
func (c *Control) SetTagsPropertyByClass(tagClass, property, value string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken {
		return false, ErrConnectionBroken
	}
	return c.checkCall("LogiArxSetTagsPropertyByClass",
		c.lib.SetTagsPropertyByClass(
			c.truncate(tagClass, limitName, "tag class"),
			c.truncate(property, limitName, "property"),
			c.truncate(value, limitPath, "property value")))
}

// SetTagContentByID replaces the inner HTML of the tag with the given id
// (capped at 128 characters). The content itself is not truncated.
func (c *Control) SetTagContentByID(tagID, content string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken {
		return false, ErrConnectionBroken
	}
	return c.checkCall("LogiArxSetTagContentById",
		c.lib.SetTagContentByID(c.truncate(tagID, limitName, "tag id"), content))
}

// SetTagsContentByClass replaces the inner HTML of every tag of the
// given class (capped at 128 characters).
func (c *Control) SetTagsContentByClass(tagClass, content string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken {
		return false, ErrConnectionBroken
	}
	return c.checkCall("LogiArxSetTagsContentByClass",
		c.lib.SetTagsContentByClass(c.truncate(tagClass, limitName, "tag class"), content))
}

// LastError returns the vendor error code for the most recent failed
// native call.
func (c *Control) LastError() native.ErrorCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lib.LastError()
}

// Shutdown unconditionally frees the applet resources on the device.
// The native layer treats repeated shutdown as a no-op.
func (c *Control) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lib.Shutdown()
}

// Session initializes the connection, runs body, and always shuts the
// session down afterwards, whether or not body returned an error. A
// handshake that does not succeed returns ErrInitFailed without running
// body.
func (c *Control) Session(body func(c *Control) error) error {
	ok, err := c.Init()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInitFailed, err)
	}
	if !ok {
		return ErrInitFailed
	}
	defer c.Shutdown()

	return body(c)
}

// checkCall applies the shared error policy to a raw native return
// value. Calls before Init are forwarded as-is; the SDK enforces its own
// precondition and reports ErrorSDKNotInitialized through this path.
//
// Callers must hold c.mu.
func (c *Control) checkCall(name string, ok bool) (bool, error) {
	if ok {
		return true, nil
	}

	code := c.lib.LastError()
	if code == native.ErrorSDKInitialized {
		// Double-init race: the session is already up, which is what
		// the caller wanted.
		return true, nil
	}

	c.logger.Printf("Error: %s failed: %s", name, code)

	if code == native.ErrorConnBroken {
		c.lib.Shutdown()
		c.broken = true
		return false, ErrConnectionBroken
	}

	return false, nil
}

// truncate caps s at limit runes, matching the wide-char length limits
// documented by the vendor.
func (c *Control) truncate(s string, limit int, field string) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	c.logger.Printf("Warning: truncating %s to %d characters: %.40s...", field, limit, s)
	return string(rs[:limit])
}
