package game

import "testing"

func winTestState(identities ...Identity) *GameState {
	players := make([]*Player, len(identities))
	for i, id := range identities {
		players[i] = NewPlayer(i, id, testHero("h", 4))
	}
	return NewGameState(1, players, &Deck{})
}

func TestCheckWinRebelsWinWhenLordDiesAndSpiesAreGoneOrOutnumbered(t *testing.T) {
	gs := winTestState(IdentityLord, IdentityRebel, IdentitySpy)
	gs.Players[0].MarkDead()

	faction, identity, over := CheckWin(gs)
	if !over || faction != "rebel" || identity != "Rebel" {
		t.Fatalf("CheckWin = (%q,%q,%v), want (rebel,Rebel,true)", faction, identity, over)
	}
}

func TestCheckWinSpyAloneWithDeadLordWins(t *testing.T) {
	gs := winTestState(IdentityLord, IdentityRebel, IdentitySpy)
	gs.Players[0].MarkDead()
	gs.Players[1].MarkDead()

	faction, identity, over := CheckWin(gs)
	if !over || faction != "spy" || identity != "Spy" {
		t.Fatalf("CheckWin = (%q,%q,%v), want (spy,Spy,true)", faction, identity, over)
	}
}

func TestCheckWinGovernmentWinsWhenNoRebelsOrSpiesRemain(t *testing.T) {
	gs := winTestState(IdentityLord, IdentityLoyalist, IdentityRebel, IdentitySpy)
	gs.Players[2].MarkDead()
	gs.Players[3].MarkDead()

	faction, identity, over := CheckWin(gs)
	if !over || faction != "government" || identity != "Lord" {
		t.Fatalf("CheckWin = (%q,%q,%v), want (government,Lord,true)", faction, identity, over)
	}
}

func TestCheckWinGameContinuesWhileLordAndRebelsBothAlive(t *testing.T) {
	gs := winTestState(IdentityLord, IdentityLoyalist, IdentityRebel, IdentitySpy)

	_, _, over := CheckWin(gs)
	if over {
		t.Fatal("expected the game to continue with the lord and at least one rebel alive")
	}
}

func TestIdentityTableSeatCountsSumToPlayerCountAndLordIsAlwaysOne(t *testing.T) {
	for n := 2; n <= 8; n++ {
		lord, loyalist, rebel, spy := IdentityTable(n)
		if lord != 1 {
			t.Fatalf("IdentityTable(%d) lord count = %d, want 1", n, lord)
		}
		if total := lord + loyalist + rebel + spy; total != n {
			t.Fatalf("IdentityTable(%d) seats sum to %d, want %d", n, total, n)
		}
	}
}
