package isbn

import (
	"errors"
	"testing"
)

func TestTo10KnownPairs(t *testing.T) {
	cases := []struct{ in, want string }{
		{"9780316066525", "0316066524"},
		{"9780306406157", "0306406152"},
		{"9780132350884", "0132350882"},
		{"9781861972712", "1861972717"},
		{"9780804429573", "080442957X"},
		{"9780000000002", "0000000000"},
	}
	for _, c := range cases {
		if got := To10(c.in); got != c.want {
			t.Fatalf("To10(%q): want %q, got %q", c.in, c.want, got)
		}
	}
}

func TestTo10RejectsNon978(t *testing.T) {
	for _, in := range []string{"", "979000000000", "9790316066525", "978031606652", "97803160665250", "978abcdefghi5"} {
		if got := To10(in); got != "" {
			t.Fatalf("To10(%q): want empty, got %q", in, got)
		}
	}
}

func TestTo13(t *testing.T) {
	cases := []struct{ in, want string }{
		{"0306406152", "9780306406157"},
		{"0316066524", "9780316066525"},
		{"080442957X", "9780804429573"},
		{"12345", ""},
	}
	for _, c := range cases {
		if got := To13(c.in); got != c.want {
			t.Fatalf("To13(%q): want %q, got %q", c.in, c.want, got)
		}
	}
}

func TestValidators(t *testing.T) {
	valid13 := []string{"9780316066525", "0000000000000"}
	invalid13 := []string{"978031606652", "97803160665255", "978031606652X", "", "978-0316066525"}
	for _, s := range valid13 {
		if !IsValid13(s) {
			t.Fatalf("IsValid13(%q): want true", s)
		}
	}
	for _, s := range invalid13 {
		if IsValid13(s) {
			t.Fatalf("IsValid13(%q): want false", s)
		}
	}
	valid10 := []string{"0316066524", "080442957X", "080442957x"}
	invalid10 := []string{"031606652", "03160665244", "X316066524", "03160665Y4", "031606652Y"}
	for _, s := range valid10 {
		if !IsValid10(s) {
			t.Fatalf("IsValid10(%q): want true", s)
		}
	}
	for _, s := range invalid10 {
		if IsValid10(s) {
			t.Fatalf("IsValid10(%q): want false", s)
		}
	}
}

func TestValidate(t *testing.T) {
	got, err := Validate(" 978-0-316-06652-5 ")
	if err != nil || got != "9780316066525" {
		t.Fatalf("Validate hyphenated: got %q, %v", got, err)
	}
	if _, err := Validate("12345"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Validate short: want ErrInvalid, got %v", err)
	}
	if _, err := Validate("q"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Validate letter: want ErrInvalid, got %v", err)
	}
}
