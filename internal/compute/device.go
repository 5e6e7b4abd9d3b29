// Package compute models the GPU compute substrate the matching and
// coarsening drivers are written against: typed buffers, a device that
// creates them, and a command encoder that records dispatches, clears,
// and copies for ordered, barriered submission.
//
// This package ships exactly one backend: a goroutine executor that runs
// each dispatch as a SPMD grid of fixed-size (256) workgroups. Device,
// Buffer and CommandEncoder are concrete types of this backend, not
// interfaces; pkg/matching and pkg/coarsen use them directly and write
// their kernels as Go functions over a Buffer's backing slice.
package compute

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// GroupSize is the fixed SPMD workgroup size every kernel dispatches with.
const GroupSize = 256

// Buffer is a fixed-length region of u32 words. In this CPU backend it is
// backed directly by a Go slice; kernels read and write it in place, with
// the ordering CommandEncoder.Submit provides between dispatches standing
// in for the device-side memory barrier a real GPU would need.
type Buffer struct {
	data []uint32
}

// NewBuffer allocates a zeroed buffer of n words.
func NewBuffer(n int) *Buffer {
	return &Buffer{data: make([]uint32, n)}
}

// NewBufferFromSlice wraps an existing slice as a buffer without copying.
func NewBufferFromSlice(data []uint32) *Buffer {
	return &Buffer{data: data}
}

// Len returns the buffer's word count.
func (b *Buffer) Len() int { return len(b.data) }

// Slice exposes the buffer's backing storage. Kernels read/write it
// directly; bounds are the caller's responsibility, exactly as a real
// compute shader trusts its binding sizes.
func (b *Buffer) Slice() []uint32 { return b.data }

// At returns word i.
func (b *Buffer) At(i int) uint32 { return b.data[i] }

// Set writes word i.
func (b *Buffer) Set(i int, v uint32) { b.data[i] = v }

// CountSource supplies a dispatch's live element count. Exactly one field
// is meaningful: Buffer, when non-nil, means the count is GPU-resident
// and its word 0 is read at Submit time (the buffer's length is not used
// as the count). Otherwise Direct is used, the host-known-count path.
type CountSource struct {
	Direct uint32
	Buffer *Buffer
}

// Direct builds a CountSource from a host-known count.
func Direct(n uint32) CountSource { return CountSource{Direct: n} }

// FromBuffer builds a CountSource backed by a single-word GPU buffer.
func FromBuffer(buf *Buffer) CountSource { return CountSource{Buffer: buf} }

// Resolve returns the live element count, reading the backing buffer if
// this CountSource is GPU-resident. Kernel bodies may call this directly
// when they need the exact count rather than just their own [start,end)
// slice (e.g. a single-invocation reduction kernel).
func (c CountSource) Resolve() int {
	if c.Buffer != nil {
		return int(c.Buffer.At(0))
	}
	return int(c.Direct)
}

// WorkgroupFunc is one kernel's body for the half-open invocation range
// [start, end) assigned to a single workgroup. Kernels are pure compute
// (spec: "there are no recoverable mid-pipeline errors") so the signature
// carries no error.
type WorkgroupFunc func(start, end int)

// Device creates buffers and command encoders. The zero value is ready to
// use; there is no per-device state in the CPU backend, but the type
// exists so a real backend (device/adapter acquisition, shader
// compilation) has somewhere to put it without changing callers.
type Device struct{}

// NewDevice returns a ready-to-use Device.
func NewDevice() *Device { return &Device{} }

// NewBuffer allocates a zeroed buffer of n words.
func (d *Device) NewBuffer(n int) *Buffer { return NewBuffer(n) }

// NewEncoder starts recording a new command stream.
func (d *Device) NewEncoder() *CommandEncoder { return &CommandEncoder{} }

// CommandEncoder records a sequence of dispatches, clears, and copies.
// Submit executes them in recorded order with a full barrier between
// each: dispatch N+1 never starts until every workgroup of dispatch N has
// returned. Within a dispatch, workgroup order is unspecified.
type CommandEncoder struct {
	ops []func(ctx context.Context) error
}

// DispatchWorkgroups records a direct-dispatch kernel invocation. count
// resolves to the live element count at Submit time (supporting a
// GPU-resident count transparently); the workgroup grid size is derived
// from it as ceil(count/GroupSize).
func (e *CommandEncoder) DispatchWorkgroups(count CountSource, kernel WorkgroupFunc) {
	e.ops = append(e.ops, func(ctx context.Context) error {
		total := count.Resolve()
		groups := (total + GroupSize - 1) / GroupSize
		return runWorkgroupGrid(ctx, groups, total, kernel)
	})
}

// DispatchWorkgroupsIndirect records a kernel invocation whose workgroup
// grid size was computed ahead of time by a GenerateDispatches kernel
// (indirectBuf, a 3-word {x,y,z} record -- see pkg/dispatch) and whose
// per-invocation bound comes from a separate live-count buffer. This
// mirrors the real WebGPU shape: the indirect dispatch only sizes the
// grid, so the shader body still needs the exact count to avoid acting on
// padding lanes in the last, possibly-partial workgroup.
func (e *CommandEncoder) DispatchWorkgroupsIndirect(indirectBuf, countBuf *Buffer, kernel WorkgroupFunc) {
	e.ops = append(e.ops, func(ctx context.Context) error {
		groups := int(indirectBuf.At(0))
		total := int(countBuf.At(0))
		return runWorkgroupGrid(ctx, groups, total, kernel)
	})
}

// ClearBuffer zeroes an entire buffer.
func (e *CommandEncoder) ClearBuffer(buf *Buffer) {
	e.ops = append(e.ops, func(ctx context.Context) error {
		clear(buf.data)
		return nil
	})
}

// ClearBufferSlice zeroes buf[start:end).
func (e *CommandEncoder) ClearBufferSlice(buf *Buffer, start, end int) {
	e.ops = append(e.ops, func(ctx context.Context) error {
		clear(buf.data[start:end])
		return nil
	})
}

// CopyBufferToBuffer copies src into dst. Both must have equal length.
func (e *CommandEncoder) CopyBufferToBuffer(src, dst *Buffer) {
	e.ops = append(e.ops, func(ctx context.Context) error {
		if len(src.data) != len(dst.data) {
			return fmt.Errorf("compute: copy length mismatch: %d != %d", len(src.data), len(dst.data))
		}
		copy(dst.data, src.data)
		return nil
	})
}

// Submit executes every recorded op in order, stopping at the first
// error or at context cancellation between ops.
func (e *CommandEncoder) Submit(ctx context.Context) error {
	for _, op := range e.ops {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := op(ctx); err != nil {
			return err
		}
	}
	return nil
}

// runWorkgroupGrid fans out `groups` workgroups over [0, total) and waits
// for all of them -- the barrier -- before returning. Workgroups run as
// goroutines via errgroup so a future fallible kernel body can propagate
// an error without changing the dispatch call sites.
func runWorkgroupGrid(ctx context.Context, groups, total int, kernel WorkgroupFunc) error {
	if groups <= 0 || total <= 0 {
		return nil
	}
	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < groups; i++ {
		start := i * GroupSize
		if start >= total {
			break
		}
		end := start + GroupSize
		if end > total {
			end = total
		}
		g.Go(func() error {
			kernel(start, end)
			return nil
		})
	}
	return g.Wait()
}
