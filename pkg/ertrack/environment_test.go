package ertrack

import "testing"

func TestDetectBrowser(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{
			name: "chrome",
			ua:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want: "chrome 120.0",
		},
		{
			name: "firefox",
			ua:   "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			want: "firefox 121.0",
		},
		{
			name: "ie10",
			ua:   "Mozilla/5.0 (compatible; MSIE 10.0; Windows NT 6.2; Trident/6.0)",
			want: "IE 10.0",
		},
		{
			name: "ie11",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Trident/7.0; rv:11.0) like Gecko",
			want: "IE 11.0",
		},
		{
			name: "legacy opera",
			ua:   "Opera/9.80 (Windows NT 6.1; U; en) Presto/2.10.289 Version/12.00",
			want: "opera 9.8",
		},
		{
			name: "safari",
			ua:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_1) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
			want: "safari 17.1",
		},
		{
			name: "gecko without firefox token",
			ua:   "Mozilla/5.0 (X11; Linux x86_64) Gecko/20100101 SeaMonkey",
			want: "gecko",
		},
		{
			name: "webkit without version",
			ua:   "Mozilla/5.0 AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148",
			want: "webkit",
		},
		{
			name: "command line client",
			ua:   "curl/8.4.0",
			want: UnidentifiedBrowser,
		},
		{
			name: "empty",
			ua:   "",
			want: UnidentifiedBrowser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectBrowser(tt.ua); got != tt.want {
				t.Errorf("DetectBrowser(%q) = %q, want %q", tt.ua, got, tt.want)
			}
		})
	}
}

func TestNewEnvironment(t *testing.T) {
	ua := "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	env := NewEnvironment(ua, "Linux x86_64", "https://app.example.com/page")

	if env.Browser != "firefox 121.0" {
		t.Errorf("Browser = %q, want %q", env.Browser, "firefox 121.0")
	}
	if env.OS != "Linux x86_64" {
		t.Errorf("OS = %q, want %q", env.OS, "Linux x86_64")
	}
	if env.UserAgent != "mozilla/5.0 (x11; linux x86_64; rv:121.0) gecko/20100101 firefox/121.0" {
		t.Errorf("UserAgent should be lowercased, got %q", env.UserAgent)
	}
	if env.Location != "https://app.example.com/page" {
		t.Errorf("Location = %q", env.Location)
	}
}
