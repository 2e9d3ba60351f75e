package telemetry

import (
	"regexp"
	"strings"
)

// UserAgentInfo is the parsed browser/device identity.
type UserAgentInfo struct {
	Browser        string
	BrowserVersion string
	OS             string
	OSVersion      string
	DeviceType     string
}

var (
	chromeVersionRe  = regexp.MustCompile(`Chrome/([\d.]+)`)
	safariVersionRe  = regexp.MustCompile(`Version/([\d.]+)`)
	firefoxVersionRe = regexp.MustCompile(`Firefox/([\d.]+)`)
	edgeVersionRe    = regexp.MustCompile(`Edge/([\d.]+)`)
	operaVersionRe   = regexp.MustCompile(`(?:Opera|OPR)/([\d.]+)`)
	windowsVersionRe = regexp.MustCompile(`Windows NT ([\d.]+)`)
	macVersionRe     = regexp.MustCompile(`Mac OS X ([\d_]+)`)
	androidVersionRe = regexp.MustCompile(`Android ([\d.]+)`)
	iosVersionRe     = regexp.MustCompile(`OS ([\d_]+)`)
)

// ParseUserAgent runs a fixed ordered set of substring checks; the first match
// wins and anything unrecognized falls through to "Unknown". No error path.
func ParseUserAgent(ua string) UserAgentInfo {
	info := UserAgentInfo{
		Browser:        "Unknown",
		BrowserVersion: "Unknown",
		OS:             "Unknown",
		OSVersion:      "Unknown",
		DeviceType:     "desktop",
	}

	switch {
	case strings.Contains(ua, "Chrome") && !strings.Contains(ua, "Chromium"):
		info.Browser = "Chrome"
		info.BrowserVersion = matchVersion(chromeVersionRe, ua)
	case strings.Contains(ua, "Safari") && !strings.Contains(ua, "Chrome"):
		info.Browser = "Safari"
		info.BrowserVersion = matchVersion(safariVersionRe, ua)
	case strings.Contains(ua, "Firefox"):
		info.Browser = "Firefox"
		info.BrowserVersion = matchVersion(firefoxVersionRe, ua)
	case strings.Contains(ua, "Edge"):
		info.Browser = "Edge"
		info.BrowserVersion = matchVersion(edgeVersionRe, ua)
	case strings.Contains(ua, "Opera") || strings.Contains(ua, "OPR"):
		info.Browser = "Opera"
		info.BrowserVersion = matchVersion(operaVersionRe, ua)
	}

	switch {
	case strings.Contains(ua, "Windows"):
		info.OS = "Windows"
		info.OSVersion = matchVersion(windowsVersionRe, ua)
	case strings.Contains(ua, "Mac"):
		info.OS = "macOS"
		info.OSVersion = strings.ReplaceAll(matchVersion(macVersionRe, ua), "_", ".")
	case strings.Contains(ua, "Linux"):
		info.OS = "Linux"
	case strings.Contains(ua, "Android"):
		info.OS = "Android"
		info.OSVersion = matchVersion(androidVersionRe, ua)
		info.DeviceType = "mobile"
	case strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"):
		info.OS = "iOS"
		info.OSVersion = strings.ReplaceAll(matchVersion(iosVersionRe, ua), "_", ".")
		info.DeviceType = "mobile"
		if strings.Contains(ua, "iPad") {
			info.DeviceType = "tablet"
		}
	}

	return info
}

func matchVersion(re *regexp.Regexp, ua string) string {
	if m := re.FindStringSubmatch(ua); len(m) > 1 {
		return m[1]
	}
	return "Unknown"
}
