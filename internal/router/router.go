// Package router holds the static route table and the navigation guard.
// The guard decides synchronously, from credential presence alone; whether
// the server still honors the token is only ever discovered through a later
// 401.
package router

import "errors"

const (
	RouteLogin         = "login"
	RouteSubscriptions = "subscriptions"
	RouteSettings      = "settings"

	// DefaultRoute is where an already-authenticated user lands.
	DefaultRoute = RouteSubscriptions
)

var ErrUnknownRoute = errors.New("unknown route")

type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
}

var routes = []Route{
	{Name: RouteLogin, Path: "/login", RequiresAuth: false},
	{Name: RouteSubscriptions, Path: "/subscriptions", RequiresAuth: true},
	{Name: RouteSettings, Path: "/settings", RequiresAuth: true},
}

func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

func Lookup(name string) (Route, bool) {
	for _, r := range routes {
		if r.Name == name {
			return r, true
		}
	}
	return Route{}, false
}

// TokenStore is the slice of the credential store the guard reads.
type TokenStore interface {
	Get() (string, error)
}

type Guard struct {
	store TokenStore
}

func NewGuard(store TokenStore) *Guard {
	return &Guard{store: store}
}

// Resolve returns the route that should actually be entered when navigating
// to target. Protected routes bounce to login without a credential; the
// login route bounces to the default authenticated route with one.
func (g *Guard) Resolve(target string) (Route, error) {
	route, ok := Lookup(target)
	if !ok {
		return Route{}, ErrUnknownRoute
	}

	token, err := g.store.Get()
	if err != nil {
		return Route{}, err
	}

	if route.RequiresAuth && token == "" {
		login, _ := Lookup(RouteLogin)
		return login, nil
	}
	if route.Name == RouteLogin && token != "" {
		def, _ := Lookup(DefaultRoute)
		return def, nil
	}
	return route, nil
}
