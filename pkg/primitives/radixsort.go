package primitives

import (
	"github.com/azybler/graco/internal/compute"
)

// radixBits is the digit width each LSD pass consumes; four 8-bit passes
// cover a full u32 key.
const (
	radixBits    = 8
	radixBuckets = 1 << radixBits
	radixPasses  = 32 / radixBits
)

// RadixSortByKey stably sorts (keys[i], values[i]) pairs ascending by key
// over the live range described by count, using the classic per-workgroup
// local-histogram / digit-major global-scan / local-scatter scheme: every
// histogram cell and every scatter destination is written by exactly one
// workgroup, so the whole sort needs no atomics (this module reserves
// those for contraction's weight accumulation alone).
//
// capacity is the host-known upper bound on the live count (the buffer's
// allocated length) and is used only to size the internal digit-histogram
// scratch; the actual element count dispatched each pass still comes from
// count, which may be GPU-resident. keys/values and scratchKeys/scratchValues
// must each have capacity >= capacity; after an even number of passes
// (always true here, radixPasses==4) the sorted result ends back in
// keys/values.
func RadixSortByKey(dev *compute.Device, enc *compute.CommandEncoder, keys, values, scratchKeys, scratchValues *compute.Buffer, capacity int, count compute.CountSource) {
	if capacity <= 0 {
		return
	}
	workgroups := (capacity + compute.GroupSize - 1) / compute.GroupSize
	hist := dev.NewBuffer(workgroups * radixBuckets)
	rowOffset := dev.NewBuffer(workgroups * radixBuckets)
	digitTotal := dev.NewBuffer(radixBuckets)
	digitOffset := dev.NewBuffer(radixBuckets)

	srcKeys, srcVals := keys, values
	dstKeys, dstVals := scratchKeys, scratchValues

	for pass := 0; pass < radixPasses; pass++ {
		shift := uint(pass * radixBits)
		sk, sv, dk, dv := srcKeys, srcVals, dstKeys, dstVals

		enc.ClearBuffer(hist)

		// Local histogram: each workgroup owns one row, so no cross-
		// workgroup write ever collides.
		enc.DispatchWorkgroups(count, func(start, end int) {
			row := start / compute.GroupSize
			k := sk.Slice()
			h := hist.Slice()
			base := row * radixBuckets
			for i := start; i < end; i++ {
				d := (k[i] >> shift) & (radixBuckets - 1)
				h[base+int(d)]++
			}
		})

		// Per-digit global total, one lane per digit.
		enc.DispatchWorkgroups(compute.Direct(radixBuckets), func(start, end int) {
			h := hist.Slice()
			total := digitTotal.Slice()
			for d := start; d < end; d++ {
				var sum uint32
				for w := 0; w < workgroups; w++ {
					sum += h[w*radixBuckets+d]
				}
				total[d] = sum
			}
		})

		// Exclusive prefix sum of digitTotal over the 256-wide digit
		// space; tiny, so it runs as a single serial invocation.
		enc.DispatchWorkgroups(compute.Direct(1), func(start, end int) {
			total := digitTotal.Slice()
			offset := digitOffset.Slice()
			var acc uint32
			for d := 0; d < radixBuckets; d++ {
				offset[d] = acc
				acc += total[d]
			}
		})

		// Per-digit exclusive prefix sum across workgroup rows: one lane
		// per digit, each scanning its own column of hist.
		enc.DispatchWorkgroups(compute.Direct(radixBuckets), func(start, end int) {
			h := hist.Slice()
			ro := rowOffset.Slice()
			for d := start; d < end; d++ {
				var acc uint32
				for w := 0; w < workgroups; w++ {
					ro[w*radixBuckets+d] = acc
					acc += h[w*radixBuckets+d]
				}
			}
		})

		// Scatter: each workgroup seeds a local running-count array from
		// its precomputed (digit, row) offsets, then walks its own range
		// in order, preserving stability both within and across workgroups.
		enc.DispatchWorkgroups(count, func(start, end int) {
			row := start / compute.GroupSize
			k, v := sk.Slice(), sv.Slice()
			outK, outV := dk.Slice(), dv.Slice()
			offset := digitOffset.Slice()
			ro := rowOffset.Slice()
			var running [radixBuckets]uint32
			base := row * radixBuckets
			for d := 0; d < radixBuckets; d++ {
				running[d] = offset[d] + ro[base+d]
			}
			for i := start; i < end; i++ {
				d := (k[i] >> shift) & (radixBuckets - 1)
				pos := running[d]
				running[d]++
				outK[pos] = k[i]
				outV[pos] = v[i]
			}
		})

		srcKeys, dstKeys = dstKeys, srcKeys
		srcVals, dstVals = dstVals, srcVals
	}
}
