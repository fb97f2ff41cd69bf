package routes

import (
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/productbazar/bazar/internal/httpserver/deps"
)

// Registrar mounts one surface of the gateway onto the router. Surfaces
// self-register from init() and apply their own middleware, so server.New
// never has to know which surfaces exist.
type Registrar func(r chi.Router, d deps.Deps)

var registry = map[string]Registrar{}

// Register records a surface under a unique name. A duplicate name is a
// programming error.
func Register(name string, reg Registrar) {
	if _, dup := registry[name]; dup {
		panic("routes: duplicate surface " + name)
	}
	registry[name] = reg
}

// RegisterAll mounts every surface in name order, so the route table does
// not depend on package init order. Called once from server.New.
func RegisterAll(r chi.Router, d deps.Deps) {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		registry[name](r, d)
	}
}
