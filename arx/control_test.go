package arx

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowkit-labs/arxcontrol/native"
)

// fakeLibrary is a recording implementation of native.Library for
// testing the call policy without a real DLL.
type fakeLibrary struct {
	fail      bool
	lastError native.ErrorCode

	calls     []fakeCall
	shutdowns int

	initAppID    string
	initFriendly string
	handler      native.EventHandler
}

type fakeCall struct {
	name string
	args []string
}

func (f *fakeLibrary) record(name string, args ...string) bool {
	f.calls = append(f.calls, fakeCall{name: name, args: args})
	return !f.fail
}

func (f *fakeLibrary) Init(appID, friendlyName string, handler native.EventHandler) bool {
	f.initAppID = appID
	f.initFriendly = friendlyName
	f.handler = handler
	return f.record("Init", appID, friendlyName)
}

func (f *fakeLibrary) AddUTF8StringAs(content, filename, mimeType string) bool {
	return f.record("AddUTF8StringAs", content, filename, mimeType)
}

func (f *fakeLibrary) AddFileAs(filePath, filename, mimeType string) bool {
	return f.record("AddFileAs", filePath, filename, mimeType)
}

func (f *fakeLibrary) AddContentAs(content []byte, filename, mimeType string) bool {
	return f.record("AddContentAs", string(content), filename, mimeType)
}

func (f *fakeLibrary) SetIndex(filename string) bool {
	return f.record("SetIndex", filename)
}

func (f *fakeLibrary) SetTagPropertyByID(tagID, property, value string) bool {
	return f.record("SetTagPropertyByID", tagID, property, value)
}

func (f *fakeLibrary) SetTagsPropertyByClass(tagClass, property, value string) bool {
	return f.record("SetTagsPropertyByClass", tagClass, property, value)
}

func (f *fakeLibrary) SetTagContentByID(tagID, content string) bool {
	return f.record("SetTagContentByID", tagID, content)
}

func (f *fakeLibrary) SetTagsContentByClass(tagClass, content string) bool {
	return f.record("SetTagsContentByClass", tagClass, content)
}

func (f *fakeLibrary) LastError() native.ErrorCode { return f.lastError }

func (f *fakeLibrary) Shutdown() { f.shutdowns++ }

func (f *fakeLibrary) lastCall() fakeCall {
	return f.calls[len(f.calls)-1]
}

func newTestControl(t *testing.T, fake *fakeLibrary, logBuf *bytes.Buffer) *Control {
	t.Helper()

	opts := []Option{WithLibrary(fake), WithSettleDelay(0)}
	if logBuf != nil {
		opts = append(opts, WithLogger(log.New(logBuf, "", 0)))
	}

	c, err := New("com.example.test", "Test Applet", nil, opts...)
	require.NoError(t, err)
	return c
}

func TestNewTruncatesNames(t *testing.T) {
	fake := &fakeLibrary{}
	var buf bytes.Buffer

	longID := strings.Repeat("a", 200)
	longName := strings.Repeat("b", 300)

	c, err := New(longID, longName, nil,
		WithLibrary(fake), WithSettleDelay(0), WithLogger(log.New(&buf, "", 0)))
	require.NoError(t, err)

	ok, err := c.Init()
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Len(t, []rune(fake.initAppID), 128)
	assert.Len(t, []rune(fake.initFriendly), 128)
	assert.Contains(t, buf.String(), "truncating app id")
	assert.Contains(t, buf.String(), "truncating friendly name")
}

func TestForwardingTruncation(t *testing.T) {
	fake := &fakeLibrary{}
	var buf bytes.Buffer
	c := newTestControl(t, fake, &buf)

	longPath := strings.Repeat("p", 300)
	longName := strings.Repeat("n", 300)

	ok, err := c.AddFileAs(longPath, longName, "text/html")
	require.NoError(t, err)
	assert.True(t, ok)

	call := fake.lastCall()
	assert.Len(t, []rune(call.args[0]), 256)
	assert.Len(t, []rune(call.args[1]), 256)
	assert.Equal(t, "text/html", call.args[2])
	assert.Contains(t, buf.String(), "truncating file path to 256")

	longTag := strings.Repeat("t", 200)
	longProp := strings.Repeat("q", 200)
	longValue := strings.Repeat("v", 400)

	ok, err = c.SetTagPropertyByID(longTag, longProp, longValue)
	require.NoError(t, err)
	assert.True(t, ok)

	call = fake.lastCall()
	assert.Len(t, []rune(call.args[0]), 128)
	assert.Len(t, []rune(call.args[1]), 128)
	assert.Len(t, []rune(call.args[2]), 256)
}

func TestShortValuesNotTruncated(t *testing.T) {
	fake := &fakeLibrary{}
	var buf bytes.Buffer
	c := newTestControl(t, fake, &buf)

	ok, err := c.SetIndex("index.html")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"index.html"}, fake.lastCall().args)
	assert.NotContains(t, buf.String(), "truncating")
}

func TestContentNotTruncated(t *testing.T) {
	fake := &fakeLibrary{}
	c := newTestControl(t, fake, nil)

	long := strings.Repeat("<p>x</p>", 100)
	ok, err := c.SetTagContentByID("status", long)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, long, fake.lastCall().args[1])
}

func TestCallBeforeInitPassesThrough(t *testing.T) {
	// The wrapper adds no init guard; the SDK enforces its own
	// precondition and reports it through the error-code channel.
	fake := &fakeLibrary{fail: true, lastError: native.ErrorSDKNotInitialized}
	c := newTestControl(t, fake, nil)

	ok, err := c.SetIndex("index.html")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "SetIndex", fake.lastCall().name)
}

func TestDoubleInitSuppressed(t *testing.T) {
	fake := &fakeLibrary{fail: true, lastError: native.ErrorSDKInitialized}
	var buf bytes.Buffer
	c := newTestControl(t, fake, &buf)

	ok, err := c.Init()
	require.NoError(t, err)
	assert.True(t, ok, "double-init must be reported as success")
	assert.Empty(t, buf.String())
}

func TestOrdinaryFailureLoggedAndReturned(t *testing.T) {
	fake := &fakeLibrary{fail: true, lastError: native.ErrorWrongFilePath}
	var buf bytes.Buffer
	c := newTestControl(t, fake, &buf)

	ok, err := c.AddFileAs("missing.html", "missing.html", "text/html")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "LogiArxAddFileAs failed: wrong_file_path")
	assert.Zero(t, fake.shutdowns, "ordinary failures must not tear the session down")
}

func TestConnBrokenIsFatal(t *testing.T) {
	fake := &fakeLibrary{fail: true, lastError: native.ErrorConnBroken}
	c := newTestControl(t, fake, nil)

	ok, err := c.SetIndex("index.html")
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrConnectionBroken)
	assert.Equal(t, 1, fake.shutdowns, "session must be released on broken connection")

	// Subsequent calls are rejected without reaching the native layer.
	calls := len(fake.calls)
	ok, err = c.AddStringAs("<html></html>", "index.html", "text/html")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrConnectionBroken)
	assert.Len(t, fake.calls, calls)

	_, err = c.Init()
	assert.ErrorIs(t, err, ErrConnectionBroken)
}

func TestLastError(t *testing.T) {
	fake := &fakeLibrary{lastError: native.ErrorFailedCopyMemory}
	c := newTestControl(t, fake, nil)

	assert.Equal(t, native.ErrorFailedCopyMemory, c.LastError())
}

func TestSessionRunsBodyAndShutsDown(t *testing.T) {
	fake := &fakeLibrary{}
	c := newTestControl(t, fake, nil)

	ran := false
	err := c.Session(func(c *Control) error {
		ran = true
		ok, err := c.SetIndex("index.html")
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, fake.shutdowns)
}

func TestSessionShutsDownOnBodyError(t *testing.T) {
	fake := &fakeLibrary{}
	c := newTestControl(t, fake, nil)

	bodyErr := errors.New("body failed")
	err := c.Session(func(c *Control) error { return bodyErr })
	assert.ErrorIs(t, err, bodyErr)
	assert.Equal(t, 1, fake.shutdowns, "shutdown must run even when the body fails")
}

func TestSessionInitFailure(t *testing.T) {
	fake := &fakeLibrary{fail: true, lastError: native.ErrorFailedCreateThread}
	c := newTestControl(t, fake, nil)

	ran := false
	err := c.Session(func(c *Control) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, ErrInitFailed)
	assert.False(t, ran, "body must not run when init fails")
	assert.Zero(t, fake.shutdowns)
}

func TestSessionInitConnBroken(t *testing.T) {
	fake := &fakeLibrary{fail: true, lastError: native.ErrorConnBroken}
	c := newTestControl(t, fake, nil)

	err := c.Session(func(c *Control) error { return nil })
	assert.ErrorIs(t, err, ErrInitFailed)
	assert.Equal(t, 1, fake.shutdowns)
}

func TestNewWithoutLibraryResolvesPath(t *testing.T) {
	// No injected library, no override, no installed SDK: construction
	// fails with the resolver's not-found error.
	r := &native.Resolver{
		Fs:        afero.NewMemMapFs(),
		LookupEnv: func(string) (string, bool) { return "", false },
		GOOS:      "windows",
		GOARCH:    "amd64",
	}

	_, err := New("com.example.test", "Test Applet", nil, WithResolver(r))
	assert.ErrorIs(t, err, native.ErrNotFound)
}
