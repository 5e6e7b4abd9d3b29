package compute

import (
	"context"
	"testing"
)

func TestDispatchWorkgroupsDirect(t *testing.T) {
	dev := NewDevice()
	n := 1000
	buf := dev.NewBuffer(n)
	enc := dev.NewEncoder()
	enc.DispatchWorkgroups(Direct(uint32(n)), func(start, end int) {
		s := buf.Slice()
		for i := start; i < end; i++ {
			s[i] = uint32(i * 2)
		}
	})
	if err := enc.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if got := buf.At(i); got != uint32(i*2) {
			t.Fatalf("buf[%d] = %d, want %d", i, got, i*2)
		}
	}
}

func TestDispatchWorkgroupsFromBuffer(t *testing.T) {
	dev := NewDevice()
	countBuf := dev.NewBuffer(1)
	countBuf.Set(0, 5)
	out := dev.NewBuffer(10)
	enc := dev.NewEncoder()
	enc.DispatchWorkgroups(FromBuffer(countBuf), func(start, end int) {
		s := out.Slice()
		for i := start; i < end; i++ {
			s[i] = 1
		}
	})
	if err := enc.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if out.At(i) != 1 {
			t.Errorf("out[%d] = %d, want 1", i, out.At(i))
		}
	}
	for i := 5; i < 10; i++ {
		if out.At(i) != 0 {
			t.Errorf("out[%d] = %d, want 0 (beyond the resolved count)", i, out.At(i))
		}
	}
}

func TestDispatchWorkgroupsIndirect(t *testing.T) {
	dev := NewDevice()
	indirectBuf := dev.NewBuffer(3)
	indirectBuf.Set(0, 1)
	countBuf := dev.NewBuffer(1)
	countBuf.Set(0, 3)
	out := dev.NewBuffer(3)

	enc := dev.NewEncoder()
	enc.DispatchWorkgroupsIndirect(indirectBuf, countBuf, func(start, end int) {
		s := out.Slice()
		for i := start; i < end; i++ {
			s[i] = 7
		}
	})
	if err := enc.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if out.At(i) != 7 {
			t.Errorf("out[%d] = %d, want 7", i, out.At(i))
		}
	}
}

func TestClearBufferAndSlice(t *testing.T) {
	dev := NewDevice()
	buf := dev.NewBuffer(10)
	for i := 0; i < 10; i++ {
		buf.Set(i, uint32(i+1))
	}
	enc := dev.NewEncoder()
	enc.ClearBufferSlice(buf, 2, 5)
	if err := enc.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i := 2; i < 5; i++ {
		if buf.At(i) != 0 {
			t.Errorf("buf[%d] = %d, want 0", i, buf.At(i))
		}
	}
	if buf.At(0) != 1 || buf.At(9) != 10 {
		t.Error("cleared outside the requested slice")
	}

	enc2 := dev.NewEncoder()
	enc2.ClearBuffer(buf)
	if err := enc2.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if buf.At(i) != 0 {
			t.Errorf("buf[%d] = %d, want 0 after full clear", i, buf.At(i))
		}
	}
}

func TestCopyBufferToBuffer(t *testing.T) {
	dev := NewDevice()
	src := dev.NewBuffer(4)
	for i := 0; i < 4; i++ {
		src.Set(i, uint32(i*10))
	}
	dst := dev.NewBuffer(4)

	enc := dev.NewEncoder()
	enc.CopyBufferToBuffer(src, dst)
	if err := enc.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if dst.At(i) != uint32(i*10) {
			t.Errorf("dst[%d] = %d, want %d", i, dst.At(i), i*10)
		}
	}
}

func TestCopyBufferToBufferLengthMismatch(t *testing.T) {
	dev := NewDevice()
	src := dev.NewBuffer(4)
	dst := dev.NewBuffer(5)
	enc := dev.NewEncoder()
	enc.CopyBufferToBuffer(src, dst)
	if err := enc.Submit(context.Background()); err == nil {
		t.Fatal("expected error for mismatched buffer lengths")
	}
}

func TestSubmitRespectsOrderAndCancellation(t *testing.T) {
	dev := NewDevice()
	buf := dev.NewBuffer(1)
	enc := dev.NewEncoder()
	enc.DispatchWorkgroups(Direct(1), func(start, end int) { buf.Set(0, 1) })
	enc.DispatchWorkgroups(Direct(1), func(start, end int) { buf.Set(0, buf.At(0)+1) })
	if err := enc.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if buf.At(0) != 2 {
		t.Fatalf("buf[0] = %d, want 2 (ops must run in recorded order)", buf.At(0))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	enc2 := dev.NewEncoder()
	enc2.DispatchWorkgroups(Direct(1), func(start, end int) { buf.Set(0, 99) })
	if err := enc2.Submit(ctx); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestEmptyDispatchIsNoOp(t *testing.T) {
	dev := NewDevice()
	called := false
	enc := dev.NewEncoder()
	enc.DispatchWorkgroups(Direct(0), func(start, end int) { called = true })
	if err := enc.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("kernel body ran for a zero-count dispatch")
	}
}
