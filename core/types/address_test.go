package types

import "testing"

func TestParseAddress(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"with prefix", "0x00000000000000000000000000000000000000ff", false},
		{"bare hex", "00000000000000000000000000000000000000ff", false},
		{"mixed case", "0x00000000000000000000000000000000000000FF", false},
		{"too short", "0xff", true},
		{"too long", "0x0000000000000000000000000000000000000000ff", true},
		{"not hex", "0x00000000000000000000000000000000000000zz", true},
		{"empty", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			addr, err := ParseAddress(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse %q: %v", tc.input, err)
			}
			if addr[AddressLength-1] != 0xff {
				t.Fatalf("parsed = %s", addr)
			}
		})
	}
}

func TestAddressString(t *testing.T) {
	var addr Address
	addr[AddressLength-1] = 0xab
	want := "0x00000000000000000000000000000000000000ab"
	if addr.String() != want {
		t.Fatalf("String() = %s, want %s", addr.String(), want)
	}
	parsed, err := ParseAddress(addr.String())
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if parsed != addr {
		t.Fatalf("round trip mismatch: %s", parsed)
	}
}

func TestBytesToAddress(t *testing.T) {
	short := BytesToAddress([]byte{0x01, 0x02})
	if short[AddressLength-1] != 0x02 || short[AddressLength-2] != 0x01 {
		t.Fatalf("short input not right-aligned: %s", short)
	}
	long := make([]byte, AddressLength+4)
	long[len(long)-1] = 0x09
	truncated := BytesToAddress(long)
	if truncated[AddressLength-1] != 0x09 {
		t.Fatalf("long input not truncated from the left: %s", truncated)
	}
	if !(Address{}).IsZero() {
		t.Fatal("zero address must report IsZero")
	}
}
