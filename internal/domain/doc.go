// Package domain contains the core business entities, value objects, and
// domain logic of the application: the noble profile and the noble's
// territory holdings. It represents the heart of the system, independent of
// any storage or delivery mechanism.
//
// Aggregates are treated as immutable values once handed to a store: every
// operation returns a fresh copy with its Version bumped.
package domain
