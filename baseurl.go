package arbor

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// BaseURL derives the absolute base URL of the application from the
// context's request: scheme, host (with port when the client sent one),
// and the app's base path. It fails when the context carries no request
// or when the derived URL does not parse back into scheme and host.
func BaseURL(c *Context) (string, error) {
	if c.request == nil {
		return "", fmt.Errorf("base url: context has no request")
	}
	return BaseURLFromRequest(c.request, c.app.basePath)
}

// BaseURLFromRequest derives the absolute base URL from r, appending
// contextPath. The scheme is https when the request arrived over TLS,
// http otherwise.
func BaseURLFromRequest(r *http.Request, contextPath string) (string, error) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	path := contextPath
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	raw := scheme + "://" + r.Host + path
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("base url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base url %q: missing scheme or host", raw)
	}
	return u.String(), nil
}
