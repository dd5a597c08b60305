// environment.go identifies the browser and page an error was reported from.

package ertrack

import (
	"regexp"
	"strings"
)

// Environment carries the context attributes sent with every report.
type Environment struct {
	// Browser is a short identification such as "chrome 120.0".
	Browser string

	// OS is the platform string reported by the browser (navigator.platform).
	OS string

	// UserAgent is the lowercased user agent string.
	UserAgent string

	// Location is the URL of the page that raised the error.
	Location string
}

// NewEnvironment builds an Environment from raw browser attributes.
func NewEnvironment(userAgent, platform, location string) Environment {
	return Environment{
		Browser:   DetectBrowser(userAgent),
		OS:        platform,
		UserAgent: strings.ToLower(userAgent),
		Location:  location,
	}
}

// UnidentifiedBrowser is returned by DetectBrowser when no rule matches.
const UnidentifiedBrowser = "Not identified browser"

type browserRule struct {
	pattern *regexp.Regexp
	exclude *regexp.Regexp
	label   string
}

// browserRules are tried in order; the first match wins. Chrome precedes
// Safari because Chrome user agents also mention Safari.
var browserRules = []browserRule{
	{pattern: regexp.MustCompile(`chrome/(\d+\.\d)`), label: "chrome"},
	{pattern: regexp.MustCompile(`firefox/(\d+\.\d)`), label: "firefox"},
	{pattern: regexp.MustCompile(`msie[ /](\d+\.\d)`), label: "IE"},
	{pattern: regexp.MustCompile(`trident/.*rv:(\d+\.\d)`), label: "IE"},
	{pattern: regexp.MustCompile(`opera/(\d+\.\d)`), label: "opera"},
	{pattern: regexp.MustCompile(`version/(\d+\.\d).*safari`), exclude: regexp.MustCompile(`chrome`), label: "safari"},
	{pattern: regexp.MustCompile(`gecko`), exclude: regexp.MustCompile(`like gecko`), label: "gecko"},
	{pattern: regexp.MustCompile(`webkit`), label: "webkit"},
}

// DetectBrowser returns "<browser> <major.minor>" for the given user agent,
// a bare engine name when no version is recognizable, or UnidentifiedBrowser.
func DetectBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	for _, rule := range browserRules {
		m := rule.pattern.FindStringSubmatch(ua)
		if m == nil {
			continue
		}
		if rule.exclude != nil && rule.exclude.MatchString(ua) {
			continue
		}
		if len(m) > 1 {
			return rule.label + " " + m[1]
		}
		return rule.label
	}
	return UnidentifiedBrowser
}
