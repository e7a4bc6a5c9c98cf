// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package datahub_test

import (
	"github.com/juju/errors"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"
	"gopkg.in/yaml.v3"

	"github.com/medimate/datahub"
)

type EventSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&EventSuite{})

func (*EventSuite) TestAllEvents(c *gc.C) {
	c.Assert(datahub.AllEvents(), jc.DeepEquals, []datahub.Event{
		datahub.MedicineAdded,
		datahub.MedicineUpdated,
		datahub.MedicineDeleted,
		datahub.MateAdded,
		datahub.MateRemoved,
		datahub.ProfileUpdated,
		datahub.AllDataChanged,
	})
}

func (*EventSuite) TestNamesRoundTrip(c *gc.C) {
	for _, event := range datahub.AllEvents() {
		c.Check(event.Validate(), jc.ErrorIsNil)
		parsed, err := datahub.ParseEvent(event.String())
		c.Check(err, jc.ErrorIsNil)
		c.Check(parsed, gc.Equals, event)
	}
	c.Check(datahub.MedicineAdded.String(), gc.Equals, "medicineAdded")
	c.Check(datahub.AllDataChanged.String(), gc.Equals, "allDataChanged")
}

func (*EventSuite) TestInvalid(c *gc.C) {
	for _, event := range []datahub.Event{0, -1, 8, 100} {
		err := event.Validate()
		c.Check(err, jc.Satisfies, errors.IsNotValid)
		c.Check(event.String(), gc.Equals, "unknown")
	}
	_, err := datahub.ParseEvent("medicineEaten")
	c.Check(err, gc.ErrorMatches, `event "medicineEaten" not valid`)
	c.Check(err, jc.Satisfies, errors.IsNotValid)
}

func (*EventSuite) TestYAML(c *gc.C) {
	var doc struct {
		Events []datahub.Event `yaml:"events"`
	}
	err := yaml.Unmarshal([]byte("events: [mateAdded, profileUpdated]"), &doc)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(doc.Events, jc.DeepEquals, []datahub.Event{datahub.MateAdded, datahub.ProfileUpdated})

	out, err := yaml.Marshal(doc)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(string(out), gc.Equals, "events:\n    - mateAdded\n    - profileUpdated\n")

	err = yaml.Unmarshal([]byte("events: [nope]"), &doc)
	c.Check(err, gc.ErrorMatches, `.*event "nope" not valid`)
}
