// Package testutil drives the storefront HTTP stack the way a browser would.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// Visitor replays cookies between requests and sends the CSRF token on
// unsafe requests, like the htmx client does.
type Visitor struct {
	Handler http.Handler
	// HTMX marks requests with HX-Request: true.
	HTMX    bool
	cookies map[string]*http.Cookie
}

// NewVisitor returns a visitor without cookies.
func NewVisitor(h http.Handler) *Visitor {
	return &Visitor{Handler: h, HTMX: true, cookies: map[string]*http.Cookie{}}
}

// Cookie returns the current value of a cookie, or "".
func (v *Visitor) Cookie(name string) string {
	if c, ok := v.cookies[name]; ok {
		return c.Value
	}
	return ""
}

// Get issues a GET.
func (v *Visitor) Get(target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return v.Do(req)
}

// PostForm issues a form-encoded POST carrying the CSRF header.
func (v *Visitor) PostForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if tok := v.Cookie("csrf_token"); tok != "" {
		req.Header.Set("X-CSRF-Token", tok)
	}
	return v.Do(req)
}

// Do sends req with the stored cookies and records the response cookies.
func (v *Visitor) Do(req *http.Request) *httptest.ResponseRecorder {
	if v.HTMX {
		req.Header.Set("HX-Request", "true")
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", "en")
	}
	for _, c := range v.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rec := httptest.NewRecorder()
	v.Handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(v.cookies, c.Name)
			continue
		}
		v.cookies[c.Name] = c
	}
	return rec
}
