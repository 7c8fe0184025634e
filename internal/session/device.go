package session

import "strings"

// browsers in match priority: Edge UAs contain "Chrome" and "Safari",
// Chrome UAs contain "Safari", so the more specific markers go first.
var browsers = []struct{ marker, name string }{
	{"Firefox", "Firefox"},
	{"Edg", "Edge"},
	{"Chrome", "Chrome"},
	{"Safari", "Safari"},
}

// oses in match priority: Android UAs contain "Linux", iOS UAs contain
// "Mac OS X".
var oses = []struct{ marker, name string }{
	{"Windows", "Windows"},
	{"Android", "Android"},
	{"iPhone", "iOS"},
	{"iPad", "iOS"},
	{"Mac", "macOS"},
	{"Linux", "Linux"},
}

// DescribeDevice derives a human label like "Chrome on Windows" from a
// user-agent string. Unknown values degrade to labels, never errors.
func DescribeDevice(userAgent string) string {
	browser := "Unknown browser"
	for _, b := range browsers {
		if strings.Contains(userAgent, b.marker) {
			browser = b.name
			break
		}
	}
	os := "unknown OS"
	for _, o := range oses {
		if strings.Contains(userAgent, o.marker) {
			os = o.name
			break
		}
	}
	return browser + " on " + os
}
