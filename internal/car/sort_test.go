package car

import (
	"testing"
	"time"
)

func plates(cars []Car) []string {
	out := make([]string, 0, len(cars))
	for _, c := range cars {
		out = append(out, c.PlateNumber)
	}
	return out
}

func samePlates(got []Car, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i, c := range got {
		if c.PlateNumber != want[i] {
			return false
		}
	}
	return true
}

func TestSortByOrderYearNullsLastBothDirections(t *testing.T) {
	cars := []Car{
		{PlateNumber: "AAA111", Year: intp(2010)},
		{PlateNumber: "BBB222", Year: nil},
		{PlateNumber: "CCC333", Year: intp(1995)},
	}

	asc := SortByOrder(cars, SortYearAsc)
	if !samePlates(asc, "CCC333", "AAA111", "BBB222") {
		t.Fatalf("asc order wrong: %v", plates(asc))
	}
	desc := SortByOrder(cars, SortYearDesc)
	if !samePlates(desc, "AAA111", "CCC333", "BBB222") {
		t.Fatalf("desc order wrong, nil year must stay last: %v", plates(desc))
	}
}

func TestSortByOrderBrandCaseInsensitive(t *testing.T) {
	cars := []Car{
		{PlateNumber: "AAA111", Brand: "toyota"},
		{PlateNumber: "BBB222", Brand: "Honda"},
		{PlateNumber: "CCC333", Brand: "BMW"},
	}
	got := SortByOrder(cars, SortBrandAsc)
	if !samePlates(got, "CCC333", "BBB222", "AAA111") {
		t.Fatalf("brand asc wrong: %v", plates(got))
	}
}

func TestSortStability(t *testing.T) {
	y := intp(2010)
	cars := []Car{
		{PlateNumber: "AAA111", Year: y},
		{PlateNumber: "BBB222", Year: y},
		{PlateNumber: "CCC333", Year: y},
	}
	got := SortByOrder(cars, SortYearAsc)
	if !samePlates(got, "AAA111", "BBB222", "CCC333") {
		t.Fatalf("equal keys must keep input order: %v", plates(got))
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	cars := []Car{
		{PlateNumber: "AAA111", Year: intp(2010)},
		{PlateNumber: "BBB222", Year: intp(1990)},
	}
	_ = SortByOrder(cars, SortYearAsc)
	if !samePlates(cars, "AAA111", "BBB222") {
		t.Fatalf("input slice was mutated: %v", plates(cars))
	}
}

func TestSortByFieldFallback(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cars := []Car{
		{PlateNumber: "AAA111", CreatedAt: base},
		{PlateNumber: "BBB222", CreatedAt: base.Add(time.Hour)},
	}
	// 未知字段回退到 createdAt
	got := SortByField(cars, "nonsense", false)
	if !samePlates(got, "BBB222", "AAA111") {
		t.Fatalf("unknown field must fall back to createdAt: %v", plates(got))
	}
	got = SortByField(cars, "  CREATEDAT ", true)
	if !samePlates(got, "AAA111", "BBB222") {
		t.Fatalf("field name must be case and space insensitive: %v", plates(got))
	}
}

func TestSortByFieldBlankStringsLast(t *testing.T) {
	cars := []Car{
		{PlateNumber: "AAA111", Color: ""},
		{PlateNumber: "BBB222", Color: "Rojo"},
		{PlateNumber: "CCC333", Color: "Azul"},
	}
	asc := SortByField(cars, "color", true)
	if !samePlates(asc, "CCC333", "BBB222", "AAA111") {
		t.Fatalf("blank color must sort last asc: %v", plates(asc))
	}
	desc := SortByField(cars, "color", false)
	if !samePlates(desc, "BBB222", "CCC333", "AAA111") {
		t.Fatalf("blank color must sort last desc too: %v", plates(desc))
	}
}

func TestSortIdempotent(t *testing.T) {
	cars := []Car{
		{PlateNumber: "AAA111", Year: intp(2005)},
		{PlateNumber: "BBB222", Year: nil},
		{PlateNumber: "CCC333", Year: intp(2015)},
	}
	once := SortByOrder(cars, SortYearDesc)
	twice := SortByOrder(once, SortYearDesc)
	if !samePlates(twice, plates(once)...) {
		t.Fatalf("sorting twice changed order: %v vs %v", plates(once), plates(twice))
	}
}
