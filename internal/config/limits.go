package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in a VARCHAR(255) and provide reasonable UX.
	MaxFolderNameLength = 255

	// MaxDescriptionLength caps folder descriptions.
	MaxDescriptionLength = 1000

	// MaxMediaNameLength is the maximum length for media display names.
	// Same as folder names for consistency.
	MaxMediaNameLength = 255

	// MaxUserNameLength is the maximum length for user display names.
	MaxUserNameLength = 255

	// MinPasswordLength is the minimum accepted password length for the
	// onboarding admin account.
	MinPasswordLength = 8
)
