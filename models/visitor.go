package models

import (
	"strconv"
	"strings"
)

// Visitor is one tracked browser/device identity. Every field except the IDs is
// best-effort: the collector sends whatever the client environment exposes, and
// repeated writes merge field-wise into the stored record.
type Visitor struct {
	VisitorID string `json:"visitorId" binding:"required"`
	SessionID string `json:"sessionId"`

	Timestamp int64  `json:"timestamp,omitempty"`
	Page      string `json:"page,omitempty"`
	Referrer  string `json:"referrer,omitempty"`

	UserAgent      string `json:"userAgent,omitempty"`
	Browser        string `json:"browser,omitempty"`
	BrowserVersion string `json:"browserVersion,omitempty"`
	OS             string `json:"os,omitempty"`
	OSVersion      string `json:"osVersion,omitempty"`
	DeviceType     string `json:"deviceType,omitempty"`
	Platform       string `json:"platform,omitempty"`

	Language         string `json:"language,omitempty"`
	Timezone         string `json:"timezone,omitempty"`
	ScreenResolution string `json:"screenResolution,omitempty"`
	ViewportSize     string `json:"viewportSize,omitempty"`
	ColorScheme      string `json:"colorScheme,omitempty"`

	UTMSource   string `json:"utmSource,omitempty"`
	UTMMedium   string `json:"utmMedium,omitempty"`
	UTMCampaign string `json:"utmCampaign,omitempty"`
	UTMContent  string `json:"utmContent,omitempty"`
	UTMTerm     string `json:"utmTerm,omitempty"`
	GCLID       string `json:"gclid,omitempty"`
	FBCLID      string `json:"fbclid,omitempty"`
	MSCLKID     string `json:"msclkid,omitempty"`

	ConnectionType string  `json:"connectionType,omitempty"`
	EffectiveType  string  `json:"effectiveType,omitempty"`
	Downlink       float64 `json:"downlink,omitempty"`
	RTT            int     `json:"rtt,omitempty"`
	SaveData       *bool   `json:"saveData,omitempty"`

	Memory         float64 `json:"memory,omitempty"`
	Cores          int     `json:"cores,omitempty"`
	MaxTouchPoints int     `json:"maxTouchPoints,omitempty"`

	IsOnline       *bool  `json:"isOnline,omitempty"`
	CookiesEnabled *bool  `json:"cookiesEnabled,omitempty"`
	DoNotTrack     string `json:"doNotTrack,omitempty"`

	DocumentTitle   string   `json:"documentTitle,omitempty"`
	DocumentCharset string   `json:"documentCharset,omitempty"`
	Plugins         []string `json:"plugins,omitempty"`
	Interactions    []string `json:"interactions,omitempty"`
	ScrollDepth     int      `json:"scrollDepth,omitempty"`
}

// Fields flattens the visitor into hash fields, keeping only the fields that
// were actually supplied. The result is what gets merged into the stored
// record: absent fields never clobber previously captured values.
func (v *Visitor) Fields() map[string]string {
	f := make(map[string]string)
	putStr := func(key, val string) {
		if val != "" {
			f[key] = val
		}
	}

	putStr("sessionId", v.SessionID)
	putStr("page", v.Page)
	putStr("referrer", v.Referrer)
	putStr("userAgent", v.UserAgent)
	putStr("browser", v.Browser)
	putStr("browserVersion", v.BrowserVersion)
	putStr("os", v.OS)
	putStr("osVersion", v.OSVersion)
	putStr("deviceType", v.DeviceType)
	putStr("platform", v.Platform)
	putStr("language", v.Language)
	putStr("timezone", v.Timezone)
	putStr("screenResolution", v.ScreenResolution)
	putStr("viewportSize", v.ViewportSize)
	putStr("colorScheme", v.ColorScheme)
	putStr("utmSource", v.UTMSource)
	putStr("utmMedium", v.UTMMedium)
	putStr("utmCampaign", v.UTMCampaign)
	putStr("utmContent", v.UTMContent)
	putStr("utmTerm", v.UTMTerm)
	putStr("gclid", v.GCLID)
	putStr("fbclid", v.FBCLID)
	putStr("msclkid", v.MSCLKID)
	putStr("connectionType", v.ConnectionType)
	putStr("effectiveType", v.EffectiveType)
	putStr("doNotTrack", v.DoNotTrack)
	putStr("documentTitle", v.DocumentTitle)
	putStr("documentCharset", v.DocumentCharset)

	if v.Timestamp != 0 {
		f["timestamp"] = strconv.FormatInt(v.Timestamp, 10)
	}
	if v.Downlink != 0 {
		f["downlink"] = strconv.FormatFloat(v.Downlink, 'f', -1, 64)
	}
	if v.RTT != 0 {
		f["rtt"] = strconv.Itoa(v.RTT)
	}
	if v.Memory != 0 {
		f["memory"] = strconv.FormatFloat(v.Memory, 'f', -1, 64)
	}
	if v.Cores != 0 {
		f["cores"] = strconv.Itoa(v.Cores)
	}
	if v.MaxTouchPoints != 0 {
		f["maxTouchPoints"] = strconv.Itoa(v.MaxTouchPoints)
	}
	if v.ScrollDepth != 0 {
		f["scrollDepth"] = strconv.Itoa(v.ScrollDepth)
	}
	if v.SaveData != nil {
		f["saveData"] = strconv.FormatBool(*v.SaveData)
	}
	if v.IsOnline != nil {
		f["isOnline"] = strconv.FormatBool(*v.IsOnline)
	}
	if v.CookiesEnabled != nil {
		f["cookiesEnabled"] = strconv.FormatBool(*v.CookiesEnabled)
	}
	if len(v.Plugins) > 0 {
		f["plugins"] = strings.Join(v.Plugins, ",")
	}
	if len(v.Interactions) > 0 {
		f["interactions"] = strings.Join(v.Interactions, ",")
	}

	return f
}
