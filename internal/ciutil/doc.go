// Package ciutil centralizes the environment lookups used by tests that
// need external services, so every adapter test agrees on which variables
// name the test Postgres database and Redis server.
package ciutil
