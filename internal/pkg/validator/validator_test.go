package validator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // valid UUIDv7
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B", // valid UUIDv7 (uppercase)
	}
	invalid := []string{
		"123e4567-e89b-12d3-a456-426614174000", // not v7
		"123E4567-E89B-12D3-A456-426614174000", // not v7
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"",                                     // empty
	}
	for _, uuid := range valid {
		if !IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = false, want true", uuid)
		}
	}
	for _, uuid := range invalid {
		if IsValidUUID(uuid) {
			t.Errorf("IsValidUUID(%q) = true, want false", uuid)
		}
	}
}

func TestIsNumeric(t *testing.T) {
	valid := []string{"123", "0", "9876543210"}
	invalid := []string{"abc", "123a", "", "-123"}
	for _, s := range valid {
		if !IsNumeric(s) {
			t.Errorf("IsNumeric(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsNumeric(s) {
			t.Errorf("IsNumeric(%q) = true, want false", s)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidPAN(t *testing.T) {
	valid := []string{"ABCDE1234F", "abcde1234f", " AAAPL1234C "}
	invalid := []string{"ABCD1234F", "ABCDE12345", "1BCDE1234F", "ABCDE1234", ""}
	for _, pan := range valid {
		if !IsValidPAN(pan) {
			t.Errorf("IsValidPAN(%q) = false, want true", pan)
		}
	}
	for _, pan := range invalid {
		if IsValidPAN(pan) {
			t.Errorf("IsValidPAN(%q) = true, want false", pan)
		}
	}
}

func TestIsValidUAN(t *testing.T) {
	valid := []string{"100123456789", "1001 2345 6789"}
	invalid := []string{"10012345678", "1001234567890", "10012345678a", ""}
	for _, uan := range valid {
		if !IsValidUAN(uan) {
			t.Errorf("IsValidUAN(%q) = false, want true", uan)
		}
	}
	for _, uan := range invalid {
		if IsValidUAN(uan) {
			t.Errorf("IsValidUAN(%q) = true, want false", uan)
		}
	}
}

func TestIsRate(t *testing.T) {
	valid := []string{"0", "0.5", "1", "0.0075"}
	invalid := []string{"-0.01", "1.01", "12"}
	for _, s := range valid {
		if !IsRate(decimal.RequireFromString(s)) {
			t.Errorf("IsRate(%s) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsRate(decimal.RequireFromString(s)) {
			t.Errorf("IsRate(%s) = true, want false", s)
		}
	}
}

func TestMaxDecimalPlaces(t *testing.T) {
	if !MaxDecimalPlaces(decimal.RequireFromString("146.25"), 2) {
		t.Errorf("MaxDecimalPlaces(146.25, 2) = false, want true")
	}
	if MaxDecimalPlaces(decimal.RequireFromString("146.255"), 2) {
		t.Errorf("MaxDecimalPlaces(146.255, 2) = true, want false")
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "basic_salary", Message: "invalid"},
		{Field: "hra", Message: "required"},
	}
	got := errs.Error()
	want := "basic_salary: invalid; hra: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "basic_salary", Message: "invalid"},
		{Field: "hra", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"basic_salary": "invalid", "hra": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}
