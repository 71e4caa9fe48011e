// Package approval implements the human-in-the-loop approval layer. Selected
// invocations are paused until an explicit approve or reject decision is
// recorded.
package approval
