// Package version provides build and version information.
package version

// Version is the current application version.
// Update this at logical milestones.
const Version = "1.0.0"

// Milestones:
// 0.9.0 - Site adapters and the search pipeline
// 1.0.0 - Interactive shell, config reload, torrent downloads
