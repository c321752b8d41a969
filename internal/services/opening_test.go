package services

import "testing"

func TestSearchByECO(t *testing.T) {
	svc := NewOpeningService()

	opening, err := svc.SearchByECO("b20")
	if err != nil {
		t.Fatalf("SearchByECO returned error: %v", err)
	}
	if opening.Name != "Sicilian Defense" {
		t.Errorf("Name = %q, want Sicilian Defense", opening.Name)
	}

	if _, err := svc.SearchByECO("Z99"); err == nil {
		t.Error("expected an error for an unknown ECO code")
	}
}

func TestSearchByMoves(t *testing.T) {
	svc := NewOpeningService()

	opening, err := svc.SearchByMoves([]string{"e4", "c5"})
	if err != nil {
		t.Fatalf("SearchByMoves returned error: %v", err)
	}
	if opening.ECO != "B20" {
		t.Errorf("ECO = %q, want B20", opening.ECO)
	}

	if _, err := svc.SearchByMoves([]string{"a3", "a6"}); err == nil {
		t.Error("expected an error for an unrecognized move sequence")
	}
}

func TestGetOpeningByName(t *testing.T) {
	svc := NewOpeningService()

	results, err := svc.GetOpeningByName("sicilian")
	if err != nil {
		t.Fatalf("GetOpeningByName returned error: %v", err)
	}
	if len(results) != 1 || results[0].ECO != "B20" {
		t.Errorf("results = %+v, want a single Sicilian Defense match", results)
	}

	if _, err := svc.GetOpeningByName("nonexistent opening name"); err == nil {
		t.Error("expected an error for a name with no matches")
	}
}

func TestGetECOCategories(t *testing.T) {
	svc := NewOpeningService()
	categories := svc.GetECOCategories()
	if len(categories["B"]) == 0 {
		t.Error("expected at least one B-category opening")
	}
}
