package skills

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sanguosha/engine/internal/game"
)

func TestLoadLuaPluginsMissingDirIsNotAnError(t *testing.T) {
	handlers, err := LoadLuaPlugins(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("expected a missing plugin dir to be fine, got %v", err)
	}
	if handlers != nil {
		t.Errorf("expected a nil handler map for a missing dir, got %v", handlers)
	}
}

func TestLoadLuaPluginsKeysByFilenameStem(t *testing.T) {
	dir := t.TempDir()
	script := "function resolve(player, targets)\n  engine.log(\"hi\")\nend\n"
	if err := os.WriteFile(filepath.Join(dir, "my_skill.lua"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("not lua"), 0o644); err != nil {
		t.Fatal(err)
	}

	handlers, err := LoadLuaPlugins(dir)
	if err != nil {
		t.Fatalf("LoadLuaPlugins: %v", err)
	}
	if _, ok := handlers["my_skill"]; !ok {
		t.Fatalf("expected a handler keyed 'my_skill', got keys %v", keysOf(handlers))
	}
	if len(handlers) != 1 {
		t.Errorf("expected non-.lua files to be ignored, got %d handlers", len(handlers))
	}
}

func keysOf(m map[string]HandlerFunc) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestMergeHandlersHandWrittenWins(t *testing.T) {
	var baseCalled, extraCalled bool
	base := map[string]HandlerFunc{
		"dup": func(ctx context.Context, d *game.Duel, player int, targets []*game.CardInstance) error {
			baseCalled = true
			return nil
		},
		"only_base": func(ctx context.Context, d *game.Duel, player int, targets []*game.CardInstance) error { return nil },
	}
	extra := map[string]HandlerFunc{
		"dup": func(ctx context.Context, d *game.Duel, player int, targets []*game.CardInstance) error {
			extraCalled = true
			return nil
		},
		"only_extra": func(ctx context.Context, d *game.Duel, player int, targets []*game.CardInstance) error { return nil },
	}

	merged := MergeHandlers(base, extra)
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged ids, got %d", len(merged))
	}
	merged["dup"](context.Background(), nil, 0, nil)
	if !baseCalled || extraCalled {
		t.Error("expected the base (hand-written) handler to win over the plugin handler of the same id")
	}
	if _, ok := merged["only_extra"]; !ok {
		t.Error("expected a plugin-only id to still be present after merge")
	}
}
