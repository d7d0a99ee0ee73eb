package constants

// Context keys shared between middleware and handlers
const (
	ContextKeyUserID     = "user_id"
	ContextKeyUser       = "user"
	ContextKeyToken      = "token_claims"
	ContextKeyResourceID = "resource_id"
)

// Validation limits
const (
	MinPasswordLength     = 8
	MaxPhoneLength        = 15
	MaxUsernameBaseLength = 130
)

// Pagination
const (
	MinPage         = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)
