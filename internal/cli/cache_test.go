package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fretboard/pkg/cache"
	"github.com/matzehuels/fretboard/pkg/config"
)

func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	c := New(&bytes.Buffer{}, log.InfoLevel)
	cfg := config.Default()
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")
	c.cfg = cfg
	return c
}

func TestCacheClear(t *testing.T) {
	c := newTestCLI(t)

	fc, err := cache.NewFileCache(c.cfg.Cache.Dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		if err := fc.Set(ctx, k, []byte(`{"x":1}`), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	cmd := c.cacheClearCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(out.String(), "Cleared 3 cached entries") {
		t.Errorf("unexpected output %q", out.String())
	}

	entries, _, err := fc.Stats()
	if err != nil || entries != 0 {
		t.Errorf("after clear: entries=%d err=%v", entries, err)
	}
}

func TestCacheClearMissingDir(t *testing.T) {
	c := newTestCLI(t)
	cmd := c.cacheClearCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Cache is empty") {
		t.Errorf("unexpected output %q", out.String())
	}
	if _, err := os.Stat(c.cfg.Cache.Dir); !os.IsNotExist(err) {
		t.Error("clearing a missing cache should not create it")
	}
}

func TestCacheInfo(t *testing.T) {
	c := newTestCLI(t)
	c.cfg.Cache.TTL = "2h"

	cmd := c.cacheInfoCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{c.cfg.Cache.Dir, "enabled", "at most 2h0m0s"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("cache info %q missing %q", out.String(), want)
		}
	}
}
