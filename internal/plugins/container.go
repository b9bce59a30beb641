package plugins

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrServiceNotFound is returned by Resolve for identifiers nobody registered.
var ErrServiceNotFound = errors.New("service not found")

// Constructor builds a service instance on first use.
type Constructor func() (any, error)

// Container is a lazy service container. Instances are constructed on the
// first Resolve and cached; failed constructions are retried on the next call.
type Container struct {
	mu           sync.Mutex
	constructors map[string]Constructor
	instances    map[string]any
}

// NewContainer returns an empty container.
func NewContainer() *Container {
	return &Container{
		constructors: make(map[string]Constructor),
		instances:    make(map[string]any),
	}
}

// Register binds id to constructor, replacing any earlier binding and its
// cached instance.
func (c *Container) Register(id string, constructor Constructor) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("plugins: service id is required")
	}
	if constructor == nil {
		return fmt.Errorf("plugins: constructor for %s is nil", id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.constructors[id] = constructor
	delete(c.instances, id)
	return nil
}

// RegisterInstance binds id to an already constructed service.
func (c *Container) RegisterInstance(id string, instance any) error {
	return c.Register(id, func() (any, error) { return instance, nil })
}

// Resolve returns the instance bound to id.
func (c *Container) Resolve(id string) (any, error) {
	id = strings.TrimSpace(id)

	c.mu.Lock()
	defer c.mu.Unlock()

	if instance, ok := c.instances[id]; ok {
		return instance, nil
	}

	constructor, ok := c.constructors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, id)
	}

	instance, err := constructor()
	if err != nil {
		return nil, fmt.Errorf("construct %s: %w", id, err)
	}
	c.instances[id] = instance
	return instance, nil
}

// Has reports whether id is registered.
func (c *Container) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.constructors[strings.TrimSpace(id)]
	return ok
}
