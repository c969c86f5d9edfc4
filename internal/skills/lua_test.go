package skills

import "testing"

func TestLoadLuaHandlerRejectsSyntaxErrorAtLoadTime(t *testing.T) {
	_, err := LoadLuaHandler("broken", "function resolve(player, targets\n  engine.log('oops')\nend")
	if err == nil {
		t.Fatal("expected a Lua syntax error to be caught at load time, before any activation")
	}
}

func TestLoadLuaHandlerAcceptsWellFormedScript(t *testing.T) {
	h, err := LoadLuaHandler("heal_self", `
function resolve(player, targets)
  engine.log("healing seat " .. player)
end
`)
	if err != nil {
		t.Fatalf("expected a well-formed script to load, got %v", err)
	}
	if h == nil {
		t.Fatal("expected a non-nil handler")
	}
}
