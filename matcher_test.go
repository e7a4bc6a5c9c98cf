// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package datahub_test

import (
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/medimate/datahub"
)

type MatcherSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&MatcherSuite{})

func (*MatcherSuite) TestEventMatches(c *gc.C) {
	var matcher datahub.EventMatcher = datahub.MedicineAdded
	c.Check(matcher.Match(datahub.MedicineAdded), jc.IsTrue)
	c.Check(matcher.Match(datahub.MedicineUpdated), jc.IsFalse)
	c.Check(matcher.Match(datahub.MateAdded), jc.IsFalse)
	c.Check(matcher.Match(datahub.AllDataChanged), jc.IsTrue)
}

func (*MatcherSuite) TestMatchAll(c *gc.C) {
	matcher := datahub.MatchAll
	for _, event := range datahub.AllEvents() {
		c.Check(matcher.Match(event), jc.IsTrue)
	}
}

func (*MatcherSuite) TestMatchAny(c *gc.C) {
	matcher := datahub.MatchAny(datahub.MateAdded, datahub.MateRemoved)
	c.Check(matcher.Match(datahub.MateAdded), jc.IsTrue)
	c.Check(matcher.Match(datahub.MateRemoved), jc.IsTrue)
	c.Check(matcher.Match(datahub.AllDataChanged), jc.IsTrue)
	c.Check(matcher.Match(datahub.MedicineAdded), jc.IsFalse)
	c.Check(matcher.Match(datahub.ProfileUpdated), jc.IsFalse)
}

func (*MatcherSuite) TestMatchAnyEmpty(c *gc.C) {
	matcher := datahub.MatchAny()
	c.Check(matcher.Match(datahub.MedicineAdded), jc.IsFalse)
	c.Check(matcher.Match(datahub.AllDataChanged), jc.IsFalse)
}
