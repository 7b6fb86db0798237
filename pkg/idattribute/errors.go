package idattribute

import "errors"

var (
	// ErrMaxDepthExceeded is returned when the value nests deeper than the
	// codec is willing to walk.
	ErrMaxDepthExceeded = errors.New("attribute value is nested too deep")
	// ErrInvalidFile is returned when a file position does not hold a file
	// object with a string content.
	ErrInvalidFile = errors.New("file value must be an object with a content field")
	// ErrInvalidFileContent ...
	ErrInvalidFileContent = errors.New("file content must be base64 encoded")
	// ErrDocumentNotFound is returned when a document reference points to a
	// document that is not part of the attribute.
	ErrDocumentNotFound = errors.New("referenced document not found")
)
