package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAddressMinimizeKeepsOnlyGeography(t *testing.T) {
	full := Address{
		FirstName:    "Jamie",
		LastName:     "Doe",
		Company:      "Acme",
		Address1:     "1 Main St",
		Address2:     "Apt 2",
		Phone:        "+15550100",
		Zip:          "10001",
		City:         "New York",
		Province:     "New York",
		ProvinceCode: "NY",
		Country:      "United States",
		CountryCode:  "US",
	}

	want := Address{
		City:         "New York",
		Province:     "New York",
		ProvinceCode: "NY",
		Country:      "United States",
		CountryCode:  "US",
	}
	if diff := cmp.Diff(want, full.Minimize()); diff != "" {
		t.Fatalf("Minimize mismatch (-want +got):\n%s", diff)
	}
}

func TestAddressMinimizeEmpty(t *testing.T) {
	if diff := cmp.Diff(Address{}, Address{}.Minimize()); diff != "" {
		t.Fatalf("minimizing an empty address must yield an empty address (-want +got):\n%s", diff)
	}
}

func TestAddressMinimizeIsIdempotent(t *testing.T) {
	minimized := Address{City: "Lyon", Country: "France", CountryCode: "FR"}.Minimize()
	if diff := cmp.Diff(minimized, minimized.Minimize()); diff != "" {
		t.Fatalf("Minimize is not idempotent (-want +got):\n%s", diff)
	}
}
