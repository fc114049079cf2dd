package rtsp

import (
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Builder produces Dahua-style realmonitor URLs for an NVR.
type Builder struct {
	Host     string
	Port     int
	Username string
	Password string
	Subtype  int
}

func (b Builder) Target(cameraID string) string {
	q := url.Values{}
	q.Set("channel", cameraID)
	q.Set("subtype", strconv.Itoa(b.Subtype))

	u := url.URL{
		Scheme:   "rtsp",
		User:     url.UserPassword(b.Username, b.Password),
		Host:     net.JoinHostPort(b.Host, strconv.Itoa(b.Port)),
		Path:     "/cam/realmonitor",
		RawQuery: q.Encode(),
	}
	return u.String()
}

var userinfoRe = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9+.-]*://)[^/@\s]+@`)

// Redact strips credentials from s. When target is a URL carrying a password,
// the password is masked wherever it appears: raw, as written in the target's
// userinfo, and in query or path escaping.
func Redact(s, target string) string {
	if u, err := url.Parse(target); err == nil && u.User != nil {
		if pwd, ok := u.User.Password(); ok && pwd != "" {
			_, userinfoEscaped, _ := strings.Cut(u.User.String(), ":")
			for _, form := range []string{userinfoEscaped, url.QueryEscape(pwd), url.PathEscape(pwd), pwd} {
				if form != "" {
					s = strings.ReplaceAll(s, form, "xxxxx")
				}
			}
		}
	}
	return userinfoRe.ReplaceAllString(s, "${1}xxxxx@")
}
