package handler

const (
	// RootPath is the prefix of every api route.
	RootPath = "/api/"

	// ErrNilDepsFatalLogMsg is used if the router or a dependency is nil.
	ErrNilDepsFatalLogMsg = "router, cfg, db or permission service is nil"

	// ErrMsgInvalidID is sent when a path id is not a number.
	ErrMsgInvalidID = "Invalid id"
	// ErrMsgInvalidBody is sent when the request body cannot be decoded.
	ErrMsgInvalidBody = "Invalid request body"
	// ErrMsgValidationPrefix prefixes validation error messages.
	ErrMsgValidationPrefix = "Validation failed: "
)
