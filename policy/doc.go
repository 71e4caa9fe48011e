// Package policy provides optional declarative rules that can be applied on
// top of a running engine – for example to require human approval for
// selected actions or to enforce maturity constraints on an integration.
package policy
