package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, root string, rel string, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestCollectViolationsFlagsLayerLeaks(t *testing.T) {
	root := filepath.Join(t.TempDir(), "contexts")
	writeSource(t, root, "governance/proposal-engine/domain/entities/ok.go", `package entities

import "time"

var _ = time.Now
`)
	writeSource(t, root, "governance/proposal-engine/domain/entities/bad.go", `package entities

import _ "govengine/internal/platform/logging"
`)
	writeSource(t, root, "governance/proposal-engine/application/queries/ok.go", `package queries

import (
	_ "github.com/samber/lo"
	_ "govengine/contexts/governance/proposal-engine/ports"
)
`)
	writeSource(t, root, "governance/proposal-engine/application/commands/bad.go", `package commands

import (
	_ "github.com/redis/go-redis/v9"
	_ "govengine/contexts/governance/proposal-engine/adapters/memory"
	_ "govengine/contexts/treasury/ledger/ports"
)
`)
	writeSource(t, root, "governance/proposal-engine/adapters/memory/store.go", `package memory

import _ "github.com/redis/go-redis/v9"
`)

	violations := collectViolations(root)
	byFile := map[string]int{}
	for _, v := range violations {
		byFile[v.File]++
	}

	if byFile["contexts/governance/proposal-engine/domain/entities/ok.go"] != 0 {
		t.Fatalf("expected clean domain file, got %+v", violations)
	}
	if byFile["contexts/governance/proposal-engine/application/queries/ok.go"] != 0 {
		t.Fatalf("expected lo and ports to be allowed, got %+v", violations)
	}
	if byFile["contexts/governance/proposal-engine/adapters/memory/store.go"] != 0 {
		t.Fatalf("adapters are not checked, got %+v", violations)
	}
	if byFile["contexts/governance/proposal-engine/domain/entities/bad.go"] != 2 {
		t.Fatalf("expected infrastructure and allowlist violations for domain, got %+v", violations)
	}
	// redis: allowlist; memory adapter: adapters + allowlist; treasury: cross-module + allowlist
	if byFile["contexts/governance/proposal-engine/application/commands/bad.go"] != 5 {
		t.Fatalf("expected 5 application violations, got %+v", violations)
	}
}

func TestIsStdlib(t *testing.T) {
	cases := map[string]bool{
		"context":              true,
		"encoding/json":        true,
		"govengine/contracts":  false,
		"github.com/samber/lo": false,
		"gorm.io/gorm":         false,
	}
	for path, want := range cases {
		if got := isStdlib(path); got != want {
			t.Fatalf("isStdlib(%q) = %v, want %v", path, got, want)
		}
	}
}
