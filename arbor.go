package arbor

import (
	"io"
	"log/slog"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/component"
	"github.com/aretw0/arbor/pkg/el"
	"github.com/aretw0/arbor/pkg/ports"
)

// App holds what is shared by every request: the application scope, the
// component registry, and the expression factory.
type App struct {
	application ports.AttributeStore
	components  *component.Registry
	factory     *el.Factory
	observer    el.Observer
	basePath    string
	logger      *slog.Logger
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithLogger sets a custom structured logger for the app.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithApplicationScope injects a custom store behind the application scope.
func WithApplicationScope(store ports.AttributeStore) Option {
	return func(a *App) {
		a.application = store
	}
}

// WithComponentRegistry injects a registry with host component types.
func WithComponentRegistry(reg *component.Registry) Option {
	return func(a *App) {
		a.components = reg
	}
}

// WithObserver wires expression metrics into the app's factory.
func WithObserver(o el.Observer) Option {
	return func(a *App) {
		a.observer = o
	}
}

// WithBasePath sets the context path prepended to derived base URLs.
func WithBasePath(path string) Option {
	return func(a *App) {
		a.basePath = path
	}
}

// New initializes an App with in-memory application scope and the built-in
// component types.
func New(opts ...Option) *App {
	app := &App{}
	for _, opt := range opts {
		opt(app)
	}

	if app.application == nil {
		app.application = memory.NewStore()
	}
	if app.components == nil {
		app.components = component.NewRegistry()
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var factoryOpts []el.Option
	if app.observer != nil {
		factoryOpts = append(factoryOpts, el.WithObserver(app.observer))
	}
	app.factory = el.NewFactory(factoryOpts...)

	return app
}

// Factory returns the app's expression factory.
func (a *App) Factory() *el.Factory {
	return a.factory
}

// Components returns the app's component registry.
func (a *App) Components() *component.Registry {
	return a.components
}

// ApplicationScope returns the store behind the application scope.
func (a *App) ApplicationScope() ports.AttributeStore {
	return a.application
}

// BasePath returns the configured context path ("" when unset).
func (a *App) BasePath() string {
	return a.basePath
}

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}
