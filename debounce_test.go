// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package datahub_test

import (
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/medimate/datahub"
)

type DebouncerSuite struct {
	testing.IsolationSuite

	clock *testclock.Clock
	calls chan struct{}
}

var _ = gc.Suite(&DebouncerSuite{})

func (s *DebouncerSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.clock = testclock.NewClock(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC))
	s.calls = make(chan struct{}, 10)
}

func (s *DebouncerSuite) newDebouncer(delay time.Duration) *datahub.Debouncer {
	return datahub.NewDebouncer(s.clock, delay, func() {
		s.calls <- struct{}{}
	})
}

func (s *DebouncerSuite) expectCall(c *gc.C) {
	select {
	case <-s.calls:
	case <-time.After(testing.LongWait):
		c.Fatal("action not called")
	}
}

func (s *DebouncerSuite) expectNoCall(c *gc.C) {
	select {
	case <-s.calls:
		c.Fatal("unexpected action call")
	case <-time.After(testing.ShortWait):
	}
}

func (s *DebouncerSuite) TestBurstCoalesced(c *gc.C) {
	d := s.newDebouncer(datahub.DefaultDebounce)
	d.Trigger()
	d.Trigger()
	d.Trigger()
	c.Check(d.Pending(), jc.IsTrue)

	// Only the last trigger's timer is still waiting.
	err := s.clock.WaitAdvance(datahub.DefaultDebounce, testing.LongWait, 1)
	c.Assert(err, jc.ErrorIsNil)
	s.expectCall(c)
	s.expectNoCall(c)
	c.Check(d.Pending(), jc.IsFalse)
}

func (s *DebouncerSuite) TestTriggerRestartsWindow(c *gc.C) {
	d := s.newDebouncer(datahub.DefaultDebounce)
	d.Trigger()
	err := s.clock.WaitAdvance(200*time.Millisecond, testing.LongWait, 1)
	c.Assert(err, jc.ErrorIsNil)
	s.expectNoCall(c)

	d.Trigger()
	err = s.clock.WaitAdvance(200*time.Millisecond, testing.LongWait, 1)
	c.Assert(err, jc.ErrorIsNil)
	s.expectNoCall(c)

	s.clock.Advance(100 * time.Millisecond)
	s.expectCall(c)
}

func (s *DebouncerSuite) TestSeparateWindows(c *gc.C) {
	d := s.newDebouncer(datahub.DefaultDebounce)
	for i := 0; i < 2; i++ {
		d.Trigger()
		err := s.clock.WaitAdvance(datahub.DefaultDebounce, testing.LongWait, 1)
		c.Assert(err, jc.ErrorIsNil)
		s.expectCall(c)
	}
}

func (s *DebouncerSuite) TestFlush(c *gc.C) {
	d := s.newDebouncer(datahub.DefaultDebounce)
	d.Flush()
	s.expectNoCall(c)

	d.Trigger()
	d.Flush()
	s.expectCall(c)
	c.Check(d.Pending(), jc.IsFalse)

	s.clock.Advance(time.Second)
	s.expectNoCall(c)
}

func (s *DebouncerSuite) TestStop(c *gc.C) {
	d := s.newDebouncer(datahub.DefaultDebounce)
	d.Trigger()
	d.Stop()
	c.Check(d.Pending(), jc.IsFalse)
	s.clock.Advance(time.Second)
	s.expectNoCall(c)

	d.Trigger()
	d.Flush()
	s.expectNoCall(c)
}

func (s *DebouncerSuite) TestZeroDelayCallsImmediately(c *gc.C) {
	d := s.newDebouncer(0)
	d.Trigger()
	s.expectCall(c)
	d.Trigger()
	s.expectCall(c)
}

func (s *DebouncerSuite) TestActionMayTrigger(c *gc.C) {
	var d *datahub.Debouncer
	calls := 0
	d = datahub.NewDebouncer(s.clock, 0, func() {
		calls++
		if calls < 3 {
			d.Trigger()
		}
		s.calls <- struct{}{}
	})
	d.Trigger()
	// The nested triggers ran after each call returned, on this goroutine.
	c.Check(calls, gc.Equals, 3)
	for i := 0; i < 3; i++ {
		s.expectCall(c)
	}
	s.expectNoCall(c)
}

func (s *DebouncerSuite) TestTriggerWhileRunningCoalesces(c *gc.C) {
	started := make(chan struct{}, 10)
	release := make(chan struct{})
	calls := make(chan struct{}, 10)
	d := datahub.NewDebouncer(s.clock, 0, func() {
		started <- struct{}{}
		<-release
		calls <- struct{}{}
	})
	go d.Trigger()
	select {
	case <-started:
	case <-time.After(testing.LongWait):
		c.Fatal("action not started")
	}

	// Both return straight away, leaving one more call to the running
	// goroutine.
	d.Trigger()
	d.Trigger()
	close(release)

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(testing.LongWait):
			c.Fatalf("call %d not made", i)
		}
	}
	select {
	case <-calls:
		c.Fatal("triggers while running were not coalesced")
	case <-time.After(testing.ShortWait):
	}
}
