// Package events provides types and interfaces for propagating store
// change notifications.
//
// This package defines event types and handler interfaces that allow for
// loose coupling between the backend data layer and the rendering cache.
// Callers emit a StoreChangeEvent when a product, collection, page, menu,
// template or domain mapping changes; registered handlers react without
// the caller knowing which caches are affected.
//
// The primary components are:
// - StoreChangeEvent: Represents a mutation in a store
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
// - InvalidationHandler: Bridges events into cache invalidation
package events
