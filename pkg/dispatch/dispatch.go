// Package dispatch provides the small helpers around indirect-dispatch
// workgroup-count generation: turning one or more GPU-resident live
// counts into the three-word {x, y, z} record a later
// compute.CommandEncoder.DispatchWorkgroupsIndirect call consumes.
package dispatch

import (
	"github.com/azybler/graco/internal/compute"
)

// Workgroups computes ceil(count / groupSize), the x-dimension of a
// dispatch grid for a 1-D kernel.
func Workgroups(count, groupSize uint32) uint32 {
	if groupSize == 0 {
		return 0
	}
	return (count + groupSize - 1) / groupSize
}

// EncodeGenerateDispatches records the tiny kernel that reads one or two
// live-count buffers and a fixed group size, and writes
// DispatchWorkgroups{x: ceil(max(counts)/groupSize), y: 1, z: 1} into out
// (a 3-word buffer). Passing two counts covers kernels sized by the
// larger of two live domains (e.g. a kernel whose grid must cover both a
// node-indexed and an edge-ref-indexed count); most callers pass one.
func EncodeGenerateDispatches(enc *compute.CommandEncoder, counts []*compute.Buffer, groupSize uint32, out *compute.Buffer) {
	enc.DispatchWorkgroups(compute.Direct(1), func(start, end int) {
		var maxCount uint32
		for _, c := range counts {
			if v := c.At(0); v > maxCount {
				maxCount = v
			}
		}
		o := out.Slice()
		o[0] = Workgroups(maxCount, groupSize)
		o[1] = 1
		o[2] = 1
	})
}

// IndirectFromDirect writes a host-known count into a single-word buffer
// and returns that buffer (wrap it with compute.FromBuffer for a
// CountSource reading it back): a tiny uniform
// buffer standing in for a host-known count, for callers that want one
// code path regardless of whether a count is host-known or
// device-resident.
func IndirectFromDirect(dev *compute.Device, count uint32) *compute.Buffer {
	buf := dev.NewBuffer(1)
	buf.Set(0, count)
	return buf
}
