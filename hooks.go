package extcore

import (
	"log/slog"
	"sync"
)

// Lifecycle names a point in server configuration at which hooks run.
type Lifecycle string

const (
	BeforeMiddlewares     Lifecycle = "beforeMiddlewares"
	BeforeRoutes          Lifecycle = "beforeRoutes"
	AfterRoutes           Lifecycle = "afterRoutes"
	AfterErrorMiddlewares Lifecycle = "afterErrorMiddlewares"
)

// HookFunc is run with the router being configured.
type HookFunc func(app *Router) error

// HooksBuilderFunc registers hooks on the builder it receives.
type HooksBuilderFunc func(b *HookBuilder)

// HookBuilder collects hooks per lifecycle.
type HookBuilder struct {
	mu    sync.Mutex
	hooks map[Lifecycle][]HookFunc
}

// NewHookBuilder returns an empty builder.
func NewHookBuilder() *HookBuilder {
	return &HookBuilder{hooks: make(map[Lifecycle][]HookFunc)}
}

// BeforeMiddlewares runs fn before the base middleware is installed.
func (b *HookBuilder) BeforeMiddlewares(fn HookFunc) *HookBuilder {
	return b.add(BeforeMiddlewares, fn)
}

// BeforeRoutes runs fn after the base middleware, before any route.
func (b *HookBuilder) BeforeRoutes(fn HookFunc) *HookBuilder {
	return b.add(BeforeRoutes, fn)
}

// AfterRoutes runs fn once every route is registered.
func (b *HookBuilder) AfterRoutes(fn HookFunc) *HookBuilder {
	return b.add(AfterRoutes, fn)
}

// AfterErrorMiddlewares runs fn after the base error handlers are
// installed. Error middleware added here runs after them.
func (b *HookBuilder) AfterErrorMiddlewares(fn HookFunc) *HookBuilder {
	return b.add(AfterErrorMiddlewares, fn)
}

func (b *HookBuilder) add(lc Lifecycle, fn HookFunc) *HookBuilder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hooks == nil {
		b.hooks = make(map[Lifecycle][]HookFunc)
	}
	b.hooks[lc] = append(b.hooks[lc], fn)
	return b
}

// Hooks returns the hooks registered for lc, in registration order.
func (b *HookBuilder) Hooks(lc Lifecycle) []HookFunc {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]HookFunc(nil), b.hooks[lc]...)
}

// Trigger runs every hook of lc against app. A failing or panicking hook
// is logged and does not stop the others.
func (b *HookBuilder) Trigger(lc Lifecycle, app *Router) {
	for i, hook := range b.Hooks(lc) {
		if err := runHook(hook, app); err != nil {
			app.Logger().Error("Exception thrown when running hooks on lifecycle",
				slog.String("lifecycle", string(lc)),
				slog.Int("hook", i),
				slog.String("err", err.Error()),
			)
		}
	}
}

func runHook(hook HookFunc, app *Router) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = panicError(rec)
		}
	}()
	return hook(app)
}
