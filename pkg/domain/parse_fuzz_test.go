package domain

import (
	"strings"
	"testing"
)

// FuzzParseWallet checks that wallet parsing never panics and that every
// accepted value is canonical.
func FuzzParseWallet(f *testing.F) {
	f.Add("")
	f.Add("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
	f.Add("0x0000000000000000000000000000000000000000")
	f.Add("0xWorker1234")
	f.Add("3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		w, err := ParseWallet(input)
		if err != nil {
			return
		}
		if string(w) != strings.ToLower(string(w)) {
			t.Errorf("accepted wallet %q is not lowercase", w)
		}
		again, err := ParseWallet(string(w))
		if err != nil || again != w {
			t.Errorf("wallet %q did not round-trip: %v", w, err)
		}
	})
}

// FuzzParseAmount checks that accepted amounts are non-negative and survive a
// format and parse cycle unchanged.
func FuzzParseAmount(f *testing.F) {
	f.Add("0")
	f.Add("100")
	f.Add("70.000007")
	f.Add("-1")
	f.Add("1e6")
	f.Add("0.0000001")
	f.Add("9223372036854.775807")

	f.Fuzz(func(t *testing.T, input string) {
		a, err := ParseAmount(input)
		if err != nil {
			return
		}
		if a.Micros() < 0 {
			t.Errorf("accepted negative amount %q", input)
		}
		again, err := ParseAmount(a.String())
		if err != nil || again != a {
			t.Errorf("amount %s did not round-trip: %v", a, err)
		}
	})
}
