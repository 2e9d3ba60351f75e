package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want UserAgentInfo
	}{
		{
			name: "chrome on windows",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			want: UserAgentInfo{Browser: "Chrome", BrowserVersion: "120.0.0.0", OS: "Windows", OSVersion: "10.0", DeviceType: "desktop"},
		},
		{
			name: "safari on mac",
			ua:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
			want: UserAgentInfo{Browser: "Safari", BrowserVersion: "17.1", OS: "macOS", OSVersion: "10.15.7", DeviceType: "desktop"},
		},
		{
			name: "firefox on linux",
			ua:   "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			want: UserAgentInfo{Browser: "Firefox", BrowserVersion: "121.0", OS: "Linux", OSVersion: "Unknown", DeviceType: "desktop"},
		},
		{
			name: "safari on iphone",
			ua:   "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
			// "Mac OS X" in the token puts iPhones on the macOS branch.
			want: UserAgentInfo{Browser: "Safari", BrowserVersion: "17.1", OS: "macOS", OSVersion: "Unknown", DeviceType: "desktop"},
		},
		{
			name: "chrome on android reports linux",
			ua:   "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			// Android UAs contain "Linux", which matches first in the
			// ordered checks.
			want: UserAgentInfo{Browser: "Chrome", BrowserVersion: "120.0.0.0", OS: "Linux", OSVersion: "Unknown", DeviceType: "desktop"},
		},
		{
			name: "legacy edge",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/64.0.3282.140 Safari/537.36 Edge/18.17763",
			// Edge UAs also contain "Chrome", which wins in the ordered
			// checks.
			want: UserAgentInfo{Browser: "Chrome", BrowserVersion: "64.0.3282.140", OS: "Windows", OSVersion: "10.0", DeviceType: "desktop"},
		},
		{
			name: "empty",
			ua:   "",
			want: UserAgentInfo{Browser: "Unknown", BrowserVersion: "Unknown", OS: "Unknown", OSVersion: "Unknown", DeviceType: "desktop"},
		},
		{
			name: "bot",
			ua:   "curl/8.4.0",
			want: UserAgentInfo{Browser: "Unknown", BrowserVersion: "Unknown", OS: "Unknown", OSVersion: "Unknown", DeviceType: "desktop"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseUserAgent(tt.ua))
		})
	}
}
