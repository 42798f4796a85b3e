package web

// ServerConfig contains settings for running the HTTP server.
//
// The intended defaults differ per binary:
// - overlay:   :8080, reachable from a phone on the LAN
// - simulator: 127.0.0.1:8080
type ServerConfig struct {
	ListenAddr string
	DevMode    bool

	// StaticDir, when set to an existing directory, is served at "/" instead of
	// the embedded settings window.
	StaticDir string
}
