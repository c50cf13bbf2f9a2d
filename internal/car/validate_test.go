package car

import (
	"strings"
	"testing"
	"time"
)

func TestValidatePlate(t *testing.T) {
	valid := []struct{ in, want string }{
		{"ABC123", "ABC123"},
		{"abc123", "ABC123"},
		{" abc 123 ", "ABC123"},
		{"XYZ42A", "XYZ42A"},
	}
	for _, tc := range valid {
		got, err := ValidatePlate(tc.in)
		if err != nil {
			t.Fatalf("ValidatePlate(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ValidatePlate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	invalid := []string{"", "   ", "AB123", "ABCD123", "ABC12", "123ABC", "ABC1234", "AB C12"}
	for _, in := range invalid {
		if _, err := ValidatePlate(in); err == nil {
			t.Fatalf("ValidatePlate(%q): expected error", in)
		}
	}
}

func TestValidateYear(t *testing.T) {
	if err := ValidateYear(nil); err != nil {
		t.Fatalf("nil year is allowed: %v", err)
	}
	if err := ValidateYear(intp(1900)); err != nil {
		t.Fatalf("1900 is allowed: %v", err)
	}
	current := time.Now().Year()
	if err := ValidateYear(intp(current)); err != nil {
		t.Fatalf("current year is allowed: %v", err)
	}
	if err := ValidateYear(intp(1899)); err == nil {
		t.Fatalf("1899 must be rejected")
	}
	if err := ValidateYear(intp(current + 1)); err == nil {
		t.Fatalf("future year must be rejected")
	}
}

func TestValidateBrandModelColor(t *testing.T) {
	if err := ValidateBrand("Toyota"); err != nil {
		t.Fatalf("ValidateBrand: %v", err)
	}
	if err := ValidateBrand(""); err == nil {
		t.Fatalf("empty brand must be rejected")
	}
	if err := ValidateBrand("X"); err == nil {
		t.Fatalf("1-char brand must be rejected")
	}
	if err := ValidateBrand(strings.Repeat("x", BrandMaxLen+1)); err == nil {
		t.Fatalf("overlong brand must be rejected")
	}

	if err := ValidateModel("A"); err != nil {
		t.Fatalf("1-char model is allowed: %v", err)
	}
	if err := ValidateModel(""); err == nil {
		t.Fatalf("empty model must be rejected")
	}
	if err := ValidateModel(strings.Repeat("x", ModelMaxLen+1)); err == nil {
		t.Fatalf("overlong model must be rejected")
	}

	if err := ValidateColor(""); err != nil {
		t.Fatalf("empty color is allowed: %v", err)
	}
	if err := ValidateColor("Rojo"); err != nil {
		t.Fatalf("ValidateColor: %v", err)
	}
	if err := ValidateColor("ab"); err == nil {
		t.Fatalf("2-char color must be rejected")
	}
	if err := ValidateColor(strings.Repeat("x", ColorMaxLen+1)); err == nil {
		t.Fatalf("overlong color must be rejected")
	}
}

func TestCarEqualByPlate(t *testing.T) {
	a := Car{ID: "1", PlateNumber: "ABC123", Brand: "Toyota"}
	b := Car{ID: "2", PlateNumber: "ABC123", Brand: "Honda"}
	if !a.Equal(b) {
		t.Fatalf("same plate means same car")
	}
	c := Car{ID: "3", PlateNumber: "DEF456"}
	if a.Equal(c) {
		t.Fatalf("different plates are different cars")
	}
	blank := Car{ID: "4"}
	if blank.Equal(Car{ID: "5"}) {
		t.Fatalf("blank plates never equal")
	}
}
