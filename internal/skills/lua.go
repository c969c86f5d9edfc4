// Lua-scripted plugin skills: a third skill-authoring tier alongside
// hand-written Go handlers and the YAML DSL, for effects too irregular
// for the DSL's closed step vocabulary but not worth a compiled Go
// handler — e.g. a one-off convention hero shipped by a plugin pack.
// Grounded on the teacher's plugin-loading idiom (internal/config's
// LoadPlugins directory walk) generalized from "merge more DSL records"
// to "merge more script-backed handlers", and on yuin/gopher-lua's
// standard embedding pattern (one *lua.LState per call, Go functions
// exposed through a table global).
package skills

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/sanguosha/engine/internal/game"
)

// LoadLuaHandler checks that source compiles and returns a HandlerFunc
// that loads and runs it in a fresh state per invocation (the check's
// compiled chunk is not reused): gopher-lua's *lua.LState is not
// goroutine-safe, and a duel's skill activations are already
// serialized by the turn loop, so a new state per call is simpler than
// pooling and cheap enough at this call rate.
//
// The script must define a global function:
//
//	function resolve(player, targets)
//	  engine.heal(player, 1)
//	  engine.log("...")
//	end
//
// where targets is a 1-indexed Lua table of target seat numbers.
func LoadLuaHandler(name, source string) (HandlerFunc, error) {
	// Compile once up front so a syntax error surfaces at load time
	// (alongside the YAML DSL's strict schema validation) rather than on
	// a player's first activation.
	if _, err := parseLua(source); err != nil {
		return nil, fmt.Errorf("lua skill %q: %w", name, err)
	}

	return func(ctx context.Context, d *game.Duel, player int, targets []*game.CardInstance) error {
		L := lua.NewState()
		defer L.Close()

		engineTable := L.NewTable()
		L.SetField(engineTable, "heal", L.NewFunction(func(L *lua.LState) int {
			seat := L.CheckInt(1)
			amount := L.CheckInt(2)
			d.HealPlayer(seat, amount)
			return 0
		}))
		L.SetField(engineTable, "damage", L.NewFunction(func(L *lua.LState) int {
			source := L.CheckInt(1)
			target := L.CheckInt(2)
			amount := L.CheckInt(3)
			if err := d.DealDamage(ctx, source, target, amount, game.DamageNormal); err != nil {
				L.RaiseError("%v", err)
			}
			return 0
		}))
		L.SetField(engineTable, "draw", L.NewFunction(func(L *lua.LState) int {
			seat := L.CheckInt(1)
			n := L.CheckInt(2)
			d.DrawCards(seat, n)
			return 0
		}))
		L.SetField(engineTable, "log", L.NewFunction(func(L *lua.LState) int {
			d.LogMessage(L.CheckString(1))
			return 0
		}))
		L.SetGlobal("engine", engineTable)

		if err := L.DoString(source); err != nil {
			return fmt.Errorf("lua skill %q: load: %w", name, err)
		}

		fn := L.GetGlobal("resolve")
		if fn.Type() != lua.LTFunction {
			return fmt.Errorf("lua skill %q: no resolve function defined", name)
		}

		targetTable := L.NewTable()
		for i, t := range targets {
			targetTable.RawSetInt(i+1, lua.LNumber(t.Owner))
		}

		if err := L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, lua.LNumber(player), targetTable); err != nil {
			return fmt.Errorf("lua skill %q: %w", name, err)
		}
		return nil
	}, nil
}

// parseLua checks source compiles without running it, for load-time
// validation.
func parseLua(source string) (*lua.FunctionProto, error) {
	L := lua.NewState()
	defer L.Close()
	chunk, err := L.LoadString(source)
	if err != nil {
		return nil, err
	}
	return chunk.Proto, nil
}
