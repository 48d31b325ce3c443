package domain

import "errors"

var (
	// ErrNotFound signals a missing audit record.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery signals a malformed search query or paging parameters.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidRecord signals an audit record that fails validation.
	ErrInvalidRecord = errors.New("invalid audit record")
	// ErrSearchUnavailable signals that the document store could not be queried.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrEmptyTransformResult signals a document that produced no presentable node.
	ErrEmptyTransformResult = errors.New("document produced no presentable node")
	// ErrMalformedDocument signals a raw document the transformer cannot process.
	ErrMalformedDocument = errors.New("malformed document")
)
