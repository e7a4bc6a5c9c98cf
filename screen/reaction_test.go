// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package screen_test

import (
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/medimate/datahub"
	"github.com/medimate/datahub/screen"
)

type ReactionSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&ReactionSuite{})

// TestEveryKindReactsToEveryEvent fails when an event is added without
// deciding how each screen reacts to it.
func (*ReactionSuite) TestEveryKindReactsToEveryEvent(c *gc.C) {
	for _, kind := range screen.AllKinds() {
		for _, event := range datahub.AllEvents() {
			_, err := kind.Reaction(event)
			c.Check(err, jc.ErrorIsNil, gc.Commentf("%s on %s", event, kind))
		}
	}
}

func (*ReactionSuite) TestUnknownEvent(c *gc.C) {
	for _, kind := range screen.AllKinds() {
		_, err := kind.Reaction(datahub.Event(99))
		c.Check(err, jc.Satisfies, errors.IsNotSupported)
	}
	_, err := screen.Home.Reaction(datahub.Event(0))
	c.Check(err, gc.ErrorMatches, "unknown on home screen not supported")
}

func (*ReactionSuite) TestUnknownKind(c *gc.C) {
	kind := screen.Kind(42)
	c.Check(kind.Validate(), jc.Satisfies, errors.IsNotValid)
	c.Check(kind.ID(), gc.Equals, "")
	c.Check(kind.Shows(), gc.Equals, screen.Reload(0))
	_, err := kind.Reaction(datahub.MedicineAdded)
	c.Check(err, jc.Satisfies, errors.IsNotValid)
}

func (*ReactionSuite) TestIDs(c *gc.C) {
	var ids []string
	for _, kind := range screen.AllKinds() {
		c.Check(kind.Validate(), jc.ErrorIsNil)
		ids = append(ids, kind.ID())
	}
	c.Check(ids, jc.DeepEquals, []string{
		"home",
		"fullcalendar-subscription",
		"mypage-subscription",
		"mateselection-subscription",
	})
}

func (*ReactionSuite) TestReactions(c *gc.C) {
	const (
		medicines = screen.ReloadMedicines
		mates     = screen.ReloadMates
		profile   = screen.ReloadProfile
		calendar  = screen.ReloadCalendar
	)
	expected := map[screen.Kind]map[datahub.Event]screen.Reload{
		screen.Home: {
			datahub.MedicineAdded:   medicines,
			datahub.MedicineUpdated: medicines,
			datahub.MedicineDeleted: medicines,
			datahub.MateAdded:       mates,
			datahub.MateRemoved:     mates,
			datahub.ProfileUpdated:  0,
			datahub.AllDataChanged:  medicines | mates,
		},
		screen.FullCalendar: {
			datahub.MedicineAdded:   medicines | calendar,
			datahub.MedicineUpdated: medicines | calendar,
			datahub.MedicineDeleted: medicines | calendar,
			datahub.MateAdded:       0,
			datahub.MateRemoved:     0,
			datahub.ProfileUpdated:  0,
			datahub.AllDataChanged:  medicines | calendar,
		},
		screen.MyPage: {
			datahub.MedicineAdded:   profile,
			datahub.MedicineUpdated: profile,
			datahub.MedicineDeleted: profile,
			datahub.MateAdded:       profile | mates,
			datahub.MateRemoved:     profile | mates,
			datahub.ProfileUpdated:  profile,
			datahub.AllDataChanged:  profile | mates,
		},
		screen.MateSelection: {
			datahub.MedicineAdded:   0,
			datahub.MedicineUpdated: 0,
			datahub.MedicineDeleted: 0,
			datahub.MateAdded:       mates,
			datahub.MateRemoved:     mates,
			datahub.ProfileUpdated:  0,
			datahub.AllDataChanged:  mates,
		},
	}
	for kind, reactions := range expected {
		for event, reload := range reactions {
			got, err := kind.Reaction(event)
			c.Assert(err, jc.ErrorIsNil)
			c.Check(got, gc.Equals, reload, gc.Commentf("%s on %s", event, kind))
		}
		// AllDataChanged reloads everything the screen shows.
		got, _ := kind.Reaction(datahub.AllDataChanged)
		c.Check(got, gc.Equals, kind.Shows())
	}
}

func (*ReactionSuite) TestReloadString(c *gc.C) {
	c.Check(screen.Reload(0).String(), gc.Equals, "nothing")
	c.Check(screen.ReloadMates.String(), gc.Equals, "mates")
	c.Check((screen.ReloadMedicines | screen.ReloadCalendar).String(), gc.Equals, "medicines+calendar")
	c.Check((screen.ReloadProfile | screen.ReloadMates).Has(screen.ReloadMates), jc.IsTrue)
	c.Check(screen.ReloadProfile.Has(screen.ReloadProfile|screen.ReloadMates), jc.IsFalse)
}
