package server

import "github.com/claire-namusoke/portfolio/pkg/config"

// Config is the HTTP server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string

	// Owner is served on the About page and names the assistant's persona.
	Owner config.OwnerConfig

	// Pages toggles the optional assistant pages. A disabled page's
	// endpoints answer 404.
	Pages config.PagesConfig

	// ArchiveToken is the bearer token for the /archive routes. Empty keeps
	// them unmounted.
	ArchiveToken string
}
