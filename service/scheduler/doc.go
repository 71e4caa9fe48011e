// Package scheduler periodically scans the invocation store and republishes
// invocations that became due again: deferred retries whose RunAfter elapsed
// and approval-resumed invocations rewound to pending.
package scheduler
