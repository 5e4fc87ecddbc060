package byteio

import (
	"errors"
	"testing"
)

func TestNetError(t *testing.T) {
	e := newErr(true, true, errors.New("wwoohoo"))
	_ = e.Error()
	if !IsTimeout(e) || !IsTemporary(e) {
		t.Error("expected e to be a timeout and temporary")
	}

	ee := errors.New("boring error")
	if IsTimeout(ee) || IsTemporary(ee) {
		t.Error("expected a plain error to be neither a timeout nor temporary")
	}

	expectPanic := func(p func(error) bool) {
		defer func() {
			if recover() == nil {
				t.Error("expected a panic on a nil error")
			}
		}()
		p(nil)
	}
	expectPanic(IsTimeout)
	expectPanic(IsTemporary)
}
