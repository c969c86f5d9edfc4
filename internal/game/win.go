package game

// CheckWin implements spec.md §4.8's win checker, invoked after any death
// and at engine-level transitions. Grounded on
// original_source/game/win_checker.py's WinConditionChecker.check_game_over
// / _check_lord_dead, translated with the exact branch order: lord dead is
// checked first (Spy-alone vs. Rebels), then the government win condition.
func CheckWin(gs *GameState) (winnerFaction, winnerIdentity string, over bool) {
	var lord *Player
	rebelsAlive, spiesAlive := 0, 0
	for _, p := range gs.Players {
		if !p.IsAlive() {
			continue
		}
		switch p.Identity {
		case IdentityLord:
			lord = p
		case IdentityRebel:
			rebelsAlive++
		case IdentitySpy:
			spiesAlive++
		}
	}

	if lord == nil {
		if spiesAlive == 1 && gs.AliveCount() == 1 {
			return "spy", "Spy", true
		}
		return "rebel", "Rebel", true
	}

	if rebelsAlive == 0 && spiesAlive == 0 {
		return "government", "Lord", true
	}
	return "", "", false
}
