package slack

// Export internal functions and types for testing
var (
	TruncateText   = truncateText
	MaxHeaderChars = maxHeaderLength
)
