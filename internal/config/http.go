package config

const (
	HCType           = "Content-Type"
	HAccept          = "Accept"
	HAcceptEncoding  = "Accept-Encoding"
	HContentEncoding = "Content-Encoding"
	HUserAgent       = "User-Agent"
	HRequestID       = "X-Request-ID"

	CTypeJSON = "application/json"
)

const (
	QueryIncludeDeleted = "include_deleted"
)
