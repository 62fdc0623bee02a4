// Package classpath decides whether a fully-qualified class name refers to
// a public top-level class. Classes are read from jars, Spring Boot fat jars
// and directories of compiled classes.
package classpath

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Visibility is the result of classifying a class name.
type Visibility int

const (
	Unresolved Visibility = iota
	Public
	NonPublic
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case NonPublic:
		return "non-public"
	default:
		return "unresolved"
	}
}

// ErrClassNotFound is returned by Classify for unknown names.
var ErrClassNotFound = errors.New("class not found")

// Classifier resolves a class name. An unresolvable name yields Unresolved
// and an error.
type Classifier interface {
	Classify(name string) (Visibility, error)
}

// Catalog is a Classifier backed by a map of class names to access flags.
// It is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	flags map[string]uint16
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{flags: make(map[string]uint16)}
}

// Add records a class, replacing an earlier entry with the same name.
func (c *Catalog) Add(name string, accessFlags uint16) {
	c.mu.Lock()
	c.flags[name] = accessFlags
	c.mu.Unlock()
}

// AddAll records every class in flags.
func (c *Catalog) AddAll(flags map[string]uint16) {
	c.mu.Lock()
	for name, f := range flags {
		c.flags[name] = f
	}
	c.mu.Unlock()
}

// Classify implements Classifier.
func (c *Catalog) Classify(name string) (Visibility, error) {
	c.mu.RLock()
	flags, ok := c.flags[name]
	c.mu.RUnlock()

	if !ok {
		return Unresolved, fmt.Errorf("%w: %s", ErrClassNotFound, name)
	}
	return VisibilityOf(flags), nil
}

// Len returns the number of known classes.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.flags)
}

// Names returns the known class names in order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.flags))
	for name := range c.flags {
		names = append(names, name)
	}
	c.mu.RUnlock()

	sort.Strings(names)
	return names
}

var _ Classifier = (*Catalog)(nil)

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(name string) (Visibility, error)

// Classify implements Classifier.
func (f ClassifierFunc) Classify(name string) (Visibility, error) {
	return f(name)
}
