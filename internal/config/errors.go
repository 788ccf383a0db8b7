package config

const (
	// Load errors
	ErrHTTPStatusFmt = "HTTP error! Status: %d"
	ErrUnknown       = "An unknown error occurred"

	// Save errors
	ErrTitleBodyRequired = "Title and body are required."
	ErrUpdatePostFmt     = "Failed to update post. Status: %d"
	ErrUnknownSaving     = "An unknown error occurred while saving."

	// Delete errors
	ErrDeletePostFmt   = "Failed to delete post. Status: %d"
	ErrUnknownDeleting = "An unknown error occurred while deleting."

	// Validation messages from the server are joined with this separator
	ValidationSeparator = ", "

	// Config errors
	ErrWriteConfigContentFmt = "Failed to write config content: %v"
	ErrCreateTempFileFmt     = "Failed to create temp file: %v"
)

const (
	MsgLoadingPosts     = "Loading posts..."
	MsgErrorFmt         = "Error: %s"
	MsgNoPostsMatch     = "No posts match your search."
	MsgNoPostsFound     = "No posts found."
	MsgSelectPost       = "Select a post to edit"
	MsgUntitledPost     = "Untitled Post"
	MsgNoContent        = "No content"
	MsgConfirmDelete    = "Are you sure you want to delete this post?"
	LabelSave           = "Save"
	LabelSaving         = "Saving..."
	LabelDelete         = "Delete"
	LabelDeleted        = "Deleted"
	LabelClose          = "Close"
	LabelIncludeDeleted = "Include deleted"
)
