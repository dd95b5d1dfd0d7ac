package source

import (
	"testing"
	"time"
)

func TestFixedClock(t *testing.T) {
	ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	c := FixedClock(ts)
	if !c.Now().Equal(ts) || !c.Now().Equal(ts) {
		t.Fail()
	}
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	now := SystemClock.Now()
	if now.Before(before) {
		t.Errorf(`system clock went backwards %v < %v`, now, before)
	}
}
