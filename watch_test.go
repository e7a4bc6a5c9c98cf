// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package datahub_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/medimate/datahub"
)

type ConfigWatcherSuite struct {
	testing.LoggingCleanupSuite

	path    string
	changes chan datahub.Config
}

var _ = gc.Suite(&ConfigWatcherSuite{})

func (s *ConfigWatcherSuite) SetUpTest(c *gc.C) {
	s.LoggingCleanupSuite.SetUpTest(c)
	s.path = filepath.Join(c.MkDir(), "datahub.yaml")
	s.write(c, "debounce: 1s\n")
	s.changes = make(chan datahub.Config, 100)
}

func (s *ConfigWatcherSuite) write(c *gc.C, content string) {
	c.Assert(os.WriteFile(s.path, []byte(content), 0644), jc.ErrorIsNil)
}

func (s *ConfigWatcherSuite) start(c *gc.C) *datahub.ConfigWatcher {
	w, err := datahub.NewConfigWatcher(datahub.ConfigWatcherConfig{
		Path:     s.path,
		OnChange: func(config datahub.Config) { s.changes <- config },
	})
	c.Assert(err, jc.ErrorIsNil)
	s.AddCleanup(func(c *gc.C) { c.Check(w.Stop(), jc.ErrorIsNil) })
	return w
}

// waitForDebounce waits for a config with the given debounce. A write can
// be seen half done, so earlier configs are skipped.
func (s *ConfigWatcherSuite) waitForDebounce(c *gc.C, debounce time.Duration) {
	timeout := time.After(testing.LongWait)
	for {
		select {
		case config := <-s.changes:
			if config.Debounce == debounce {
				return
			}
		case <-timeout:
			c.Fatalf("config with debounce %v not seen", debounce)
		}
	}
}

func (s *ConfigWatcherSuite) TestValidation(c *gc.C) {
	_, err := datahub.NewConfigWatcher(datahub.ConfigWatcherConfig{
		OnChange: func(datahub.Config) {},
	})
	c.Check(err, gc.ErrorMatches, "empty Path not valid")
	_, err = datahub.NewConfigWatcher(datahub.ConfigWatcherConfig{Path: s.path})
	c.Check(err, jc.Satisfies, errors.IsNotValid)
	_, err = datahub.NewConfigWatcher(datahub.ConfigWatcherConfig{
		Path:     s.path,
		Debounce: -time.Second,
		OnChange: func(datahub.Config) {},
	})
	c.Check(err, gc.ErrorMatches, "negative Debounce not valid")
}

func (s *ConfigWatcherSuite) TestMissingDirectory(c *gc.C) {
	_, err := datahub.NewConfigWatcher(datahub.ConfigWatcherConfig{
		Path:     filepath.Join(c.MkDir(), "missing", "datahub.yaml"),
		OnChange: func(datahub.Config) {},
	})
	c.Check(err, gc.ErrorMatches, `watching ".*missing": .*`)
}

func (s *ConfigWatcherSuite) TestReloadsOnWrite(c *gc.C) {
	s.start(c)
	s.write(c, "debounce: 2s\n")
	s.waitForDebounce(c, 2*time.Second)
}

func (s *ConfigWatcherSuite) TestIgnoresOtherFiles(c *gc.C) {
	s.start(c)
	other := filepath.Join(filepath.Dir(s.path), "other.yaml")
	c.Assert(os.WriteFile(other, []byte("debounce: 5s\n"), 0644), jc.ErrorIsNil)

	select {
	case config := <-s.changes:
		c.Fatalf("unexpected config %+v", config)
	case <-time.After(testing.ShortWait):
	}
}

func (s *ConfigWatcherSuite) TestInvalidConfigIsSkipped(c *gc.C) {
	var tw loggo.TestWriter
	c.Assert(loggo.RegisterWriter("watch-test", &tw), jc.ErrorIsNil)
	s.start(c)

	s.write(c, "debounce: -1s\n")
	s.write(c, "debounce: 3s\n")
	s.waitForDebounce(c, 3*time.Second)

	// The file system may coalesce both writes, so the invalid one is not
	// always read.
	for _, entry := range tw.Log() {
		if entry.Level == loggo.ERROR {
			c.Check(entry.Message, gc.Matches, `keeping previous config: config ".*datahub.yaml": .*`)
		}
	}
}

func (s *ConfigWatcherSuite) TestStopTwice(c *gc.C) {
	w, err := datahub.NewConfigWatcher(datahub.ConfigWatcherConfig{
		Path:     s.path,
		OnChange: func(config datahub.Config) { s.changes <- config },
	})
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(w.Stop(), jc.ErrorIsNil)
	c.Assert(w.Stop(), jc.ErrorIsNil)

	s.write(c, "debounce: 4s\n")
	select {
	case config := <-s.changes:
		c.Fatalf("unexpected config %+v", config)
	case <-time.After(testing.ShortWait):
	}
}
