package main

import (
	"errors"
	"fmt"
	"log"
	"maps"

	"github.com/tinytelemetry/guardbar/internal/block"
	"github.com/tinytelemetry/guardbar/internal/blocks"
	"github.com/tinytelemetry/guardbar/internal/scheduler"
	"github.com/tinytelemetry/guardbar/internal/theme"
)

// kindKey selects the block kind inside a fragment. It is stripped before
// the fragment reaches the block factory.
const kindKey = "block"

// newRegistry returns a registry holding every built-in block kind.
func newRegistry() (*block.Registry, error) {
	reg := block.NewRegistry()
	if err := blocks.Register(reg); err != nil {
		return nil, fmt.Errorf("register blocks: %w", err)
	}
	return reg, nil
}

// buildBlocks constructs the configured blocks and adds them to sched in
// order. A block with a bad fragment is logged and skipped so the rest of
// the bar still runs. It returns the number of blocks added.
func buildBlocks(reg *block.Registry, sched *scheduler.Scheduler, shared block.Shared, fragments []map[string]any) int {
	added := 0
	for i, fragment := range fragments {
		kind, rest, err := splitFragment(fragment)
		if err != nil {
			log.Printf("bar: blocks[%d]: %v", i, err)
			continue
		}

		b, err := reg.New(kind, rest, shared, sched.Handle())
		if err != nil {
			if errors.Is(err, block.ErrUnknownKind) {
				log.Printf("bar: blocks[%d]: %v (known kinds: %v)", i, err, reg.Kinds())
			} else {
				log.Printf("bar: blocks[%d]: %v", i, err)
			}
			continue
		}
		if err := sched.Add(kind, b); err != nil {
			log.Printf("bar: blocks[%d]: %v", i, err)
			continue
		}
		added++
	}
	return added
}

func splitFragment(fragment map[string]any) (string, map[string]any, error) {
	raw, ok := fragment[kindKey]
	if !ok {
		return "", nil, fmt.Errorf("missing %q key", kindKey)
	}
	kind, ok := raw.(string)
	if !ok || kind == "" {
		return "", nil, fmt.Errorf("%q must be a non-empty string, got %v", kindKey, raw)
	}

	rest := maps.Clone(fragment)
	delete(rest, kindKey)
	return kind, rest, nil
}

func loadTheme(cfg appConfig) (*theme.Theme, error) {
	t, err := theme.Load(cfg.Theme, cfg.ThemeFile)
	if err != nil {
		return nil, fmt.Errorf("load theme: %w", err)
	}
	return t, nil
}
