// config.go defines the reporter configuration.

package ertrack

// Config identifies the collector reports are sent to.
// Both fields are required; a Reporter with either missing sends nothing.
type Config struct {
	// Token authenticates the reporting site with the collector.
	Token string

	// URL is the collector endpoint. It may already carry a query string.
	URL string
}

// Enabled reports whether both the token and the URL are set.
func (c Config) Enabled() bool {
	return c.Token != "" && c.URL != ""
}
