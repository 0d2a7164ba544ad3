package config

type UploadConfig struct {
	AllowedMimeTypes []string
	MaxSizeMB        int64
	PathPrefix       string
}

// UploadContexts maps an upload purpose to its rules.
var UploadContexts = map[string]UploadConfig{
	"profile": {
		AllowedMimeTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		MaxSizeMB:        5,
		PathPrefix:       "avatars",
	},
}
