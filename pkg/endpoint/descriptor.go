package endpoint

import (
	"encoding/base64"
	"strings"
	"time"
)

// BasicAuth carries credentials for servers sitting behind a
// reverse-proxy/gateway that requires basic authentication.
type BasicAuth struct {
	Username string
	Password string
}

// HeaderValue renders the Authorization header value for the credentials.
func (a BasicAuth) HeaderValue() string {
	encoded := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
	return "Basic " + encoded
}

// Descriptor identifies one remote endpoint for the duration of a call:
// where to connect, which verb to use, and how long to wait. It is immutable
// once a call starts.
type Descriptor struct {
	Host    string
	Suffix  string
	Method  string
	Auth    *BasicAuth
	Timeout time.Duration
	Verbose bool
}

// URL joins host and path suffix, tolerating a trailing slash on the host.
func (d Descriptor) URL() string {
	return strings.TrimSuffix(d.Host, "/") + d.Suffix
}
