package services

import "testing"

func TestFoldScoreCentipawns(t *testing.T) {
	cp, mate := foldScore(135, "cp")
	if cp != 135 || mate != nil {
		t.Errorf("foldScore(135, cp) = (%d, %v), want (135, nil)", cp, mate)
	}
}

func TestFoldScoreMate(t *testing.T) {
	cp, mate := foldScore(3, "mate")
	if mate == nil || *mate != 3 {
		t.Fatalf("expected mate pointer to hold 3, got %v", mate)
	}
	if want := 10000 - 100*3; cp != want {
		t.Errorf("foldScore(3, mate) cp = %d, want %d", cp, want)
	}
}

func TestFoldScoreMateAgainst(t *testing.T) {
	cp, mate := foldScore(-2, "mate")
	if mate == nil || *mate != -2 {
		t.Fatalf("expected mate pointer to hold -2, got %v", mate)
	}
	if want := -(10000 - 100*2); cp != want {
		t.Errorf("foldScore(-2, mate) cp = %d, want %d", cp, want)
	}
}

func TestAbs(t *testing.T) {
	if abs(-5) != 5 {
		t.Error("abs(-5) should be 5")
	}
	if abs(5) != 5 {
		t.Error("abs(5) should be 5")
	}
	if abs(0) != 0 {
		t.Error("abs(0) should be 0")
	}
}
