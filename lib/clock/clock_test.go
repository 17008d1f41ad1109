package clock

import (
	"testing"
	"time"
)

func TestFake_AfterAdvancesAndRecords(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Fake(start)

	fired := <-c.After(5 * time.Second)
	if !fired.Equal(start.Add(5 * time.Second)) {
		t.Errorf("expected fire time %v, got %v", start.Add(5*time.Second), fired)
	}
	<-c.After(time.Second)

	if got := c.Now(); !got.Equal(start.Add(6 * time.Second)) {
		t.Errorf("expected now %v, got %v", start.Add(6*time.Second), got)
	}

	waits := c.Waits()
	if len(waits) != 2 || waits[0] != 5*time.Second || waits[1] != time.Second {
		t.Errorf("unexpected waits %v", waits)
	}
}

func TestFake_NonPositiveDuration(t *testing.T) {
	start := time.Unix(0, 0)
	c := Fake(start)

	<-c.After(0)
	<-c.After(-time.Second)

	if !c.Now().Equal(start) {
		t.Errorf("expected time to stand still, got %v", c.Now())
	}
	if len(c.Waits()) != 2 {
		t.Errorf("expected 2 recorded waits, got %d", len(c.Waits()))
	}
}

func TestReal_After(t *testing.T) {
	c := Real()
	before := c.Now()
	<-c.After(time.Millisecond)
	if c.Now().Before(before) {
		t.Error("real clock went backwards")
	}
}
