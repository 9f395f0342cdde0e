package camera

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/camgate/camgate/internal/config"
)

// UnknownEntityPath is used when a source URL cannot be parsed back into a
// host and path.
const UnknownEntityPath = "/camera/unknown"

// BuildURL assembles the RTSP source URL for one camera.
// Shape: rtsp://[user[:pass]@]host:port[/suffix].
func BuildURL(c config.CameraConfig) string {
	u := url.URL{
		Scheme: "rtsp",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + strings.TrimPrefix(c.URISuffix, "/"),
	}
	if c.URISuffix == "" {
		u.Path = ""
	}
	if c.Username != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		} else {
			u.User = url.User(c.Username)
		}
	}
	return u.String()
}

// MaskedURL is BuildURL with the password elided, safe for logs.
func MaskedURL(c config.CameraConfig) string {
	masked := c
	if masked.Password != "" {
		masked.Password = "*****"
	}
	return BuildURL(masked)
}

// EntityPath derives the stable identity path for a source URL:
// /camera/<host>/<path>, with credentials and port stripped. URLs that do
// not parse map to UnknownEntityPath.
func EntityPath(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil || u.Hostname() == "" {
		return UnknownEntityPath
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return "/camera/" + u.Hostname()
	}
	return "/camera/" + u.Hostname() + "/" + path
}
