// Package atom provides a vendor-neutral SaaS automation platform.
//
// It turns free-form requests into governed integration pipelines and comes
// with pluggable service layers such as:
//
//   - intelligence – keyword based detection of the vendor services a request
//     refers to
//   - catalog – declarative vendor profiles (operations, auth, retry, cache)
//   - executor / processor / scheduler – asynchronous invocation engine
//   - approval – optional human-in-the-loop gating driven by maturity levels
//   - report – persisted run reports and snapshot drift
//
// ATOM is designed to be embedded in host applications. End-users typically
// interact with the platform via the high-level Service facade exposed by the
// root package:
//
//	srv := atom.New()
//	rt := srv.Runtime()
//	_ = rt.Start(ctx)
//	report, _ := rt.RunText(ctx, "create a support ticket in zendesk")
//
// For more details see the README and individual sub-packages.
package atom
