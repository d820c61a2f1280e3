package utils

const (
	// ApplicationName is the binary and configuration namespace.
	ApplicationName = "doccomments"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// WorkingDirectoryName is the hidden workspace directory holding transient agent files.
	WorkingDirectoryName = ".doccomments"

	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal command failures.
	ApplicationExecutionFailedMessage = "doccomments failed"
)
