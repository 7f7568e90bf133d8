package native

// Library defines the interface over the Arx Control SDK export table.
// The real implementation (SDK) forwards every call into the vendor DLL;
// tests substitute a fake.
//
// Every forwarding call returns the raw native success flag. On failure,
// LastError reports the vendor error code for the most recent call.
type Library interface {
	// Init registers the event handler and performs the SDK handshake
	Init(appID, friendlyName string, handler EventHandler) bool

	// AddUTF8StringAs sends a UTF-8 string to be stored under filename
	AddUTF8StringAs(content, filename, mimeType string) bool

	// AddFileAs sends a local file to the device under filename
	AddFileAs(filePath, filename, mimeType string) bool

	// AddContentAs sends a block of memory to the device under filename
	AddContentAs(content []byte, filename, mimeType string) bool

	// SetIndex selects the page displayed on the device
	SetIndex(filename string) bool

	// SetTagPropertyByID updates one property on the tag with the given id
	SetTagPropertyByID(tagID, property, value string) bool

	// SetTagsPropertyByClass updates one property on every tag of a class
	SetTagsPropertyByClass(tagClass, property, value string) bool

	// SetTagContentByID replaces the inner content of the tag with the given id
	SetTagContentByID(tagID, content string) bool

	// SetTagsContentByClass replaces the inner content of every tag of a class
	SetTagsContentByClass(tagClass, content string) bool

	// LastError returns the error code of the most recent failed call
	LastError() ErrorCode

	// Shutdown frees the applet resources on the device; idempotent
	Shutdown()
}
