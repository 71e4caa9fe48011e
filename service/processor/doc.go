// Package processor hosts the workers that execute individual invocations.
// Every worker consumes items from the invocation queue and updates the
// invocation state so that the scheduler can decide what to dispatch next.
package processor
