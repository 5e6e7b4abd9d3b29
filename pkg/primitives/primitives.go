// Package primitives implements the generic device-wide data-parallel
// building blocks that both pkg/matching and pkg/coarsen compose: a
// stable radix sort, run-length detection over sorted keys, scatter/gather
// permutation application, an inclusive prefix sum, and index-list
// generation. Every function records dispatches onto a
// *compute.CommandEncoder rather than running eagerly. Callers pass the
// scratch buffers, except that RadixSortByKey allocates its own
// digit-histogram buffers on the device it is given.
package primitives

import (
	"github.com/azybler/graco/internal/compute"
)

// GenerateIndexList writes 0, 1, ..., count-1 into out. Race-free: each
// invocation writes exactly the one slot matching its own index.
func GenerateIndexList(enc *compute.CommandEncoder, out *compute.Buffer, count compute.CountSource) {
	enc.DispatchWorkgroups(count, func(start, end int) {
		dst := out.Slice()
		for i := start; i < end; i++ {
			dst[i] = uint32(i)
		}
	})
}

// ScatterBy records dst[idx[i]] = src[i] for i in [0, count). The caller
// must guarantee idx is a permutation (or otherwise injective) over the
// range it is used in; out-of-range or colliding indices are undefined --
// bounds must hold by construction, there is no runtime check.
func ScatterBy(enc *compute.CommandEncoder, src, idx, dst *compute.Buffer, count compute.CountSource) {
	enc.DispatchWorkgroups(count, func(start, end int) {
		s, ix, d := src.Slice(), idx.Slice(), dst.Slice()
		for i := start; i < end; i++ {
			d[ix[i]] = s[i]
		}
	})
}

// GatherBy records dst[i] = src[idx[i]] for i in [0, count).
func GatherBy(enc *compute.CommandEncoder, src, idx, dst *compute.Buffer, count compute.CountSource) {
	enc.DispatchWorkgroups(count, func(start, end int) {
		s, ix, d := src.Slice(), idx.Slice(), dst.Slice()
		for i := start; i < end; i++ {
			d[i] = s[ix[i]]
		}
	})
}

// PrefixSumInclusive computes out[i] = sum(in[0..i]) over count elements,
// a Hillis-Steele scan: 32 dispatches are recorded (only the first
// ceil(log2(count)) change anything), each reading the previous pass's
// output at a doubling stride and writing the next. scratch must
// have capacity >= count; the final result lands back in buf (the two
// buffers are swapped an even or odd number of times depending on the
// pass count, and a closing copy restores the result to buf when needed).
// Overflow is modular, matching u32 wraparound semantics.
func PrefixSumInclusive(enc *compute.CommandEncoder, buf, scratch *compute.Buffer, count compute.CountSource) {
	// The number of passes depends on count, which may be GPU-resident
	// (CountSource.Buffer) and therefore unknown at record time. We record
	// enough passes for the worst case representable by a u32 length
	// (32), each a no-op at stride >= count.
	const maxPasses = 32
	src, dst := buf, scratch
	for pass := 0; pass < maxPasses; pass++ {
		stride := 1 << uint(pass)
		s, d := src, dst
		enc.DispatchWorkgroups(count, func(start, end int) {
			in, out := s.Slice(), d.Slice()
			for i := start; i < end; i++ {
				if i >= stride {
					out[i] = in[i] + in[i-stride]
				} else {
					out[i] = in[i]
				}
			}
		})
		src, dst = dst, src
	}
	if maxPasses%2 != 0 {
		enc.CopyBufferToBuffer(src, buf)
	}
}

// FindRuns identifies maximal runs of equal consecutive values in the
// sorted keys[0:count) and reports: runCountOut[0] = number of distinct
// runs, runStarts[r] = offset of run r's first element, runMapping[i] =
// the compacted run index for position i. scratch must have capacity
// >= count (used for the intermediate "is this a new run" flags and their
// prefix sum).
//
// The whole thing is one instance of the prefix-sum-then-scatter pattern:
// mark new-run boundaries, prefix-sum them into a dense run index, then
// scatter each boundary's position into runStarts. Every write target is
// distinct by construction, so no atomics are needed.
func FindRuns(enc *compute.CommandEncoder, keys *compute.Buffer, count compute.CountSource, isNewRun, scratch, runMapping, runStarts, runCountOut *compute.Buffer) {
	enc.DispatchWorkgroups(count, func(start, end int) {
		k := keys.Slice()
		flags := isNewRun.Slice()
		for i := start; i < end; i++ {
			if i == 0 || k[i] != k[i-1] {
				flags[i] = 1
			} else {
				flags[i] = 0
			}
		}
	})
	PrefixSumInclusive(enc, isNewRun, scratch, count)
	enc.DispatchWorkgroups(count, func(start, end int) {
		flags := isNewRun.Slice()
		mapping := runMapping.Slice()
		for i := start; i < end; i++ {
			mapping[i] = flags[i] - 1
		}
	})
	enc.DispatchWorkgroups(count, func(start, end int) {
		flags := isNewRun.Slice()
		mapping := runMapping.Slice()
		starts := runStarts.Slice()
		for i := start; i < end; i++ {
			if i == 0 || flags[i] != flags[i-1] {
				starts[mapping[i]] = uint32(i)
			}
		}
	})
	enc.DispatchWorkgroups(compute.Direct(1), func(start, end int) {
		flags := isNewRun.Slice()
		n := count.Resolve()
		if n == 0 {
			runCountOut.Set(0, 0)
			return
		}
		runCountOut.Set(0, flags[n-1])
	})
}
