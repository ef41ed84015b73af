package remap

import (
	"fmt"
	"slices"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Catalog holds the rule sets for each upstream API, keyed by API name.
type Catalog struct {
	mu   sync.RWMutex
	apis map[string][]Rule
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{apis: map[string][]Rule{}}
}

// Register validates rules and stores them under api, replacing any previous set.
func (c *Catalog) Register(api string, rules []Rule) error {
	if err := validation.Validate(api, validation.Required); err != nil {
		return fmt.Errorf("%w: api name %w", ErrInvalidRule, err)
	}
	if err := validation.Validate(rules); err != nil {
		return fmt.Errorf("%w in %s: %w", ErrInvalidRule, api, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apis[api] = slices.Clone(rules)
	return nil
}

// MustRegister is like [Catalog.Register] but panics on error.
func (c *Catalog) MustRegister(api string, rules []Rule) {
	if err := c.Register(api, rules); err != nil {
		panic(err)
	}
}

// Lookup returns the rules registered for api, or an error wrapping
// [ErrNoMappings].
func (c *Catalog) Lookup(api string) ([]Rule, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rules, ok := c.apis[api]
	if !ok {
		return nil, fmt.Errorf("%w for %q", ErrNoMappings, api)
	}
	return rules, nil
}

// Names returns the registered API names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.apis))
	for name := range c.apis {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
