package testutil

import "strings"

// TestWallets provides fixed, well-formed wallet addresses for tests.
var TestWallets = struct {
	Admin    string
	NewAdmin string
	Alice    string
	Bob      string
	Contract string
}{
	Admin:    strings.Repeat("A", 60),
	NewAdmin: strings.Repeat("N", 60),
	Alice:    strings.Repeat("W", 60),
	Bob:      strings.Repeat("B", 60),
	Contract: strings.Repeat("C", 60),
}

// Wallet derives a distinct valid address from n. The value is written in
// base 26 ('A' is zero) after a leading 'M', so it never collides with
// TestWallets.
func Wallet(n int) string {
	if n < 0 {
		n = -n
	}
	buf := []byte("M" + strings.Repeat("A", 59))
	for i := len(buf) - 1; i > 0 && n > 0; i-- {
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	return string(buf)
}
