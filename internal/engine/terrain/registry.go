package terrain

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/tellus3d/tellus/internal/logger"
)

// DefaultDriverName is the driver used when neither the options nor
// the registry name one.
const DefaultDriverName = "quad"

// DriverFactory creates an engine for a named driver. The returned
// engine is unbound; the caller attaches a map with Setup.
type DriverFactory func(opts Options) (*Engine, error)

// Capabilities describes process-wide rendering limits the engine
// honors.
type Capabilities struct {
	MaxTextureUnits int
}

// Registry is the process-wide registry: globally reserved texture
// units, capabilities, and named driver factories. Driver packages
// register themselves in their init functions, which is how "pick a
// driver by name" works without a dynamic plugin loader.
type Registry struct {
	mu            sync.RWMutex
	offLimits     map[int]struct{}
	caps          Capabilities
	defaultDriver string
	drivers       map[string]DriverFactory
}

var (
	registryOnce sync.Once
	registry     *Registry
)

// DefaultRegistry returns the process-wide registry singleton.
func DefaultRegistry() *Registry {
	registryOnce.Do(func() {
		registry = &Registry{
			offLimits:     make(map[int]struct{}),
			caps:          Capabilities{MaxTextureUnits: 16},
			defaultDriver: DefaultDriverName,
			drivers:       make(map[string]DriverFactory),
		}
	})
	return registry
}

// AddOffLimitsTextureUnit reserves a unit process-wide; engines seed
// their trackers with these at setup.
func (r *Registry) AddOffLimitsTextureUnit(unit int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offLimits[unit] = struct{}{}
}

// OffLimitsTextureUnits returns the globally reserved units in order.
func (r *Registry) OffLimitsTextureUnits() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	units := make([]int, 0, len(r.offLimits))
	for u := range r.offLimits {
		units = append(units, u)
	}
	sort.Ints(units)
	return units
}

// Capabilities returns the process-wide capability limits.
func (r *Registry) Capabilities() Capabilities {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.caps
}

// SetCapabilities overrides the capability limits.
func (r *Registry) SetCapabilities(caps Capabilities) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps = caps
}

// DefaultDriver returns the driver name used when options name none.
func (r *Registry) DefaultDriver() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultDriver
}

// SetDefaultDriver changes the fallback driver name.
func (r *Registry) SetDefaultDriver(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultDriver = name
}

// RegisterDriver adds a named driver factory. Registering the same
// name twice replaces the earlier factory.
func (r *Registry) RegisterDriver(name string, factory DriverFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[name] = factory
}

// Driver returns the factory registered under name.
func (r *Registry) Driver(name string) (DriverFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.drivers[name]
	return f, ok
}

// CreateEngine resolves a driver, by explicit option or registry
// default, and asks it for an engine. Unknown drivers are a warning
// plus an error; the caller decides how fatal that is.
func CreateEngine(opts Options) (*Engine, error) {
	name := opts.Driver
	if name == "" {
		name = DefaultRegistry().DefaultDriver()
	}

	factory, ok := DefaultRegistry().Driver(name)
	if !ok {
		logger.Warn("no terrain engine driver registered", zap.String("driver", name))
		return nil, fmt.Errorf("terrain engine driver %q not registered", name)
	}
	return factory(opts)
}
