package nanolog

import "testing"

func TestStagingBufferReserveCommitPeekConsume(t *testing.T) {
	buf, err := newStagingBuffer(1, 64)
	if err != nil {
		t.Fatalf("newStagingBuffer: %v", err)
	}
	defer buf.release()

	space := buf.reserve(8)
	copy(space, []byte("abcdefgh"))
	buf.commit(8)

	got := buf.peek()
	if string(got) != "abcdefgh" {
		t.Fatalf("peek = %q, want %q", got, "abcdefgh")
	}
	buf.consume(8)

	if p := buf.peek(); p != nil {
		t.Fatalf("peek after consuming everything = %v, want nil", p)
	}
}

func TestStagingBufferCommitLessThanReserved(t *testing.T) {
	buf, err := newStagingBuffer(1, 64)
	if err != nil {
		t.Fatalf("newStagingBuffer: %v", err)
	}
	defer buf.release()

	space := buf.reserve(16)
	copy(space, []byte("hi"))
	buf.commit(2)

	got := buf.peek()
	if string(got) != "hi" {
		t.Fatalf("peek = %q, want %q", got, "hi")
	}
}

func TestStagingBufferCommitMoreThanReservedPanics(t *testing.T) {
	buf, err := newStagingBuffer(1, 64)
	if err != nil {
		t.Fatalf("newStagingBuffer: %v", err)
	}
	defer buf.release()

	buf.reserve(4)
	defer func() {
		if recover() == nil {
			t.Fatal("expected a contract violation panic")
		}
	}()
	buf.commit(5)
}

func TestStagingBufferDoubleReserveWithoutCommitPanics(t *testing.T) {
	buf, err := newStagingBuffer(1, 64)
	if err != nil {
		t.Fatalf("newStagingBuffer: %v", err)
	}
	defer buf.release()

	buf.reserve(4)
	defer func() {
		if recover() == nil {
			t.Fatal("expected a contract violation panic")
		}
	}()
	buf.reserve(4)
}

func TestStagingBufferWrapAround(t *testing.T) {
	buf, err := newStagingBuffer(1, 32)
	if err != nil {
		t.Fatalf("newStagingBuffer: %v", err)
	}
	defer buf.release()

	// Fill and drain a few times so producerPos walks near the end of
	// storage, then reserve something that can't fit in the remaining
	// tail and must wrap.
	for i := 0; i < 3; i++ {
		s := buf.reserve(10)
		copy(s, []byte("0123456789"))
		buf.commit(10)
		buf.consume(10)
	}

	s := buf.reserve(10)
	copy(s, []byte("wrapwrapwr"))
	buf.commit(10)

	got := buf.peek()
	if string(got) != "wrapwrapwr" {
		t.Fatalf("peek after wrap = %q, want %q", got, "wrapwrapwr")
	}
}

func TestStagingBufferCanDelete(t *testing.T) {
	buf, err := newStagingBuffer(1, 64)
	if err != nil {
		t.Fatalf("newStagingBuffer: %v", err)
	}
	defer buf.release()

	if buf.canDelete() {
		t.Fatal("canDelete should be false before shouldDeallocate is set")
	}

	s := buf.reserve(4)
	copy(s, []byte("abcd"))
	buf.commit(4)

	buf.shouldDeallocate.Store(true)
	if buf.canDelete() {
		t.Fatal("canDelete should be false while unread bytes remain")
	}

	buf.consume(4)
	if !buf.canDelete() {
		t.Fatal("canDelete should be true once drained and marked for deallocation")
	}
}
