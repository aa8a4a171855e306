package auth

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
)

// Rule lets requests through without a token when the method matches (any
// method if Methods is empty) and the path is Path or lies below it, unless it
// lies below one of Except.
type Rule struct {
	Methods []string
	Path    string
	Exact   bool
	Except  []string
}

func underPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

func (r Rule) Match(method, path string) bool {
	if len(r.Methods) > 0 && !slices.Contains(r.Methods, method) {
		return false
	}
	if r.Exact {
		return path == r.Path
	}
	if !underPrefix(path, r.Path) {
		return false
	}
	for _, ex := range r.Except {
		if underPrefix(path, ex) {
			return false
		}
	}
	return true
}

type AllowList []Rule

func (a AllowList) Allowed(method, path string) bool {
	for _, r := range a {
		if r.Match(method, path) {
			return true
		}
	}
	return false
}

// Skipper adapts the list to echo's middleware skipper.
func (a AllowList) Skipper(c echo.Context) bool {
	return a.Allowed(c.Request().Method, c.Request().URL.Path)
}

var readOnly = []string{http.MethodGet, http.MethodOptions}

// DefaultAllowList opens catalog reads, uploaded images, login, register and
// health probes. Aggregates under products/get stay protected.
func DefaultAllowList(base string) AllowList {
	return AllowList{
		{Methods: readOnly, Path: base + "/products", Except: []string{base + "/products/get"}},
		{Methods: readOnly, Path: base + "/categories"},
		{Methods: readOnly, Path: "/public/uploads"},
		{Path: base + "/users/login", Exact: true},
		{Path: base + "/users/register", Exact: true},
		{Methods: []string{http.MethodGet, http.MethodHead}, Path: "/health"},
	}
}
