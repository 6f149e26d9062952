// Package store implements the in-memory sample store that backs live
// telemetry visualization: block-chunked raw sample storage with cached
// per-block min/max aggregates, series-level conversion and formatting, and
// bit-decoded sub-fields with state-transition logs.
//
// # Architecture
//
// Three components compose bottom-up:
//
//   - BlockStore: the chunked array holding raw float64 samples for one
//     series, one cached (min, max) aggregate per block. Append-only,
//     monotonically growing for the life of a session.
//   - Series: wraps one BlockStore, owns unit conversion, formatting, write
//     slots for producers and range queries for consumers.
//   - Bitfield: an optional decorator on a Series that extracts a contiguous
//     bit range from each integer-valued sample and logs state transitions.
//
// # Write and read paths
//
// Producer threads (protocol decoders) either append sequentially through
// Series.Append, or acquire block-granular write slots, fill them directly,
// and publish each block's min/max aggregate. Advancing the published sample
// count is the single publication point: a reader that observes the count is
// guaranteed every sample below it is fully written and aggregated.
//
// The consumer (rendering) side reads counts, single samples, contiguous
// ranges, and cached range aggregates; it never blocks on producers and
// never observes a partially written block. Range min/max queries cost
// O(blocks covered + samples in partial boundary blocks), not O(samples),
// which keeps zoomed-out chart redraws fast at tens of millions of samples.
//
// # Example
//
//	session := store.NewSession()
//	conn := session.AddConnection("uart")
//	series, _ := conn.NewSeries(0,
//	    store.WithName("voltage"),
//	    store.WithUnit("V"),
//	    store.WithConversionFactors(4096, 3.3))
//
//	for i, raw := range decoded {
//	    series.Append(i, raw)
//	}
//	series.SetSampleCount(len(decoded))
//
//	lo, hi, _ := series.RangeAggregate(0, series.SampleCount()-1)
package store
