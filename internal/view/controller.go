// Package view holds the load/mutate lifecycle shared by every screen of the
// admin client. A Controller owns one resource's data and keeps it consistent
// with the server by refetching after every mutation instead of patching
// local state.
package view

import (
	"context"

	"github.com/sirupsen/logrus"
)

// FetchFunc retrieves the current server-side state of a resource.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Controller manages the lifecycle of one displayed resource. It is not safe
// for concurrent use; callers drive it from a single goroutine.
type Controller[T any] struct {
	fetch   FetchFunc[T]
	log     *logrus.Entry
	data    T
	loaded  bool
	loading bool
	err     error
}

// NewController returns a controller that sources its data from fetch.
func NewController[T any](log *logrus.Entry, fetch FetchFunc[T]) *Controller[T] {
	return &Controller[T]{fetch: fetch, log: log}
}

// Load refetches the resource. On failure the previous data is kept so the
// caller can still render the last known state alongside the error.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.loading = true
	defer func() { c.loading = false }()

	data, err := c.fetch(ctx)
	if err != nil {
		c.err = err
		if c.log != nil {
			c.log.WithError(err).Debug("load failed")
		}
		return err
	}

	c.data = data
	c.loaded = true
	c.err = nil
	return nil
}

// Mutate runs a state-changing action and, if it succeeds, reloads the
// resource from the server. The mutation error takes precedence over any
// reload error so the caller always sees why the action failed.
func (c *Controller[T]) Mutate(ctx context.Context, action func(ctx context.Context) error) error {
	if err := action(ctx); err != nil {
		return err
	}
	return c.Load(ctx)
}

// Data returns the last successfully loaded value.
func (c *Controller[T]) Data() T { return c.data }

// Ready reports whether at least one load has succeeded.
func (c *Controller[T]) Ready() bool { return c.loaded }

// Loading reports whether a load is in flight.
func (c *Controller[T]) Loading() bool { return c.loading }

// Err returns the error from the most recent load, or nil.
func (c *Controller[T]) Err() error { return c.err }
