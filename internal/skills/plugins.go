package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadLuaPlugins compiles every *.lua file under dir into a HandlerFunc
// keyed by its basename (without extension), so a hero's skill list can
// reference "my_lua_skill" the same way it references a hand-written or
// DSL skill id. A missing directory is not an error, matching
// config.LoadPlugins' treatment of a missing plugin directory.
func LoadLuaPlugins(dir string) (map[string]HandlerFunc, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read lua plugin dir: %w", err)
	}

	out := make(map[string]HandlerFunc)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".lua") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".lua")
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read lua plugin %s: %w", e.Name(), err)
		}
		handler, err := LoadLuaHandler(id, string(raw))
		if err != nil {
			return nil, err
		}
		out[id] = handler
	}
	return out, nil
}

// MergeHandlers layers extra handlers onto base, never overwriting an id
// base already defines — hand-written Go handlers always win over a Lua
// plugin of the same id, mirroring config's hand-written-first rule for
// card effects.
func MergeHandlers(base, extra map[string]HandlerFunc) map[string]HandlerFunc {
	out := make(map[string]HandlerFunc, len(base)+len(extra))
	for id, h := range base {
		out[id] = h
	}
	for id, h := range extra {
		if _, exists := out[id]; !exists {
			out[id] = h
		}
	}
	return out
}
