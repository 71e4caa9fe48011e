// Package executor bridges invocations enqueued by the processor with the
// backing implementation of actions.  It is effectively a glue layer between
// the high-level invocation model and low-level service implementations.
package executor
