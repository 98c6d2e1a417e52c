// Package catalog turns raw generation-backend identifiers into ranked
// fallback chains.
//
// Identifiers are parsed into a [Descriptor] (family, release channel, build
// number or preview date, reasoning flag). Two chains are derived from a
// catalog listing:
//
//   - [FastChain]: one backend per low-latency lineage, in a fixed lineage order.
//   - [StandardChain]: the full-power reasoning lineage ranked by stability and
//     recency, followed by the fast chain as a guaranteed tail.
//
// Both are pure functions of the identifier list. A [Session] lists a live
// [Source] once and caches the resulting chains:
//
//	session := catalog.NewSession(googleClient, catalog.WithTTL(6*time.Hour))
//	chain, err := session.Chain(ctx, catalog.TierStandard)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(chain) // gemini-2.5-flash > gemini-2.5-flash-preview-05-20 > gemini-2.0-flash > ...
package catalog
