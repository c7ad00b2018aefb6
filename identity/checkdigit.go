package identity

// Mod97_10 verifies the ISO 7064 MOD 97-10 check digits of a Legal Entity
// Identifier. Callers are expected to have confirmed the 20-character
// [A-Z0-9] shape first; other bytes are skipped.
//
// Digits contribute their value with base 10; letters expand to two digits
// (A=10 … Z=35) and contribute with base 100. A valid LEI leaves a final
// remainder of 1.
func Mod97_10(value string) bool {
	var remainder uint64
	for i := 0; i < len(value); i++ {
		switch c := value[i]; {
		case c >= '0' && c <= '9':
			remainder = (remainder*10 + uint64(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			remainder = (remainder*100 + uint64(c-'A') + 10) % 97
		}
	}
	return remainder == 1
}

// GS1Mod10 verifies the GS1 mod-10 check digit of a 13-digit Global
// Location Number. Positions alternate weights 1 and 3 from the left; the
// final digit must bring the weighted sum to a multiple of ten.
func GS1Mod10(value string) bool {
	if len(value) != 13 {
		return false
	}
	var sum uint32
	for i := 0; i < 12; i++ {
		d := uint32(value[i] - '0')
		if i%2 == 1 {
			sum += d * 3
		} else {
			sum += d
		}
	}
	expected := (10 - sum%10) % 10
	return expected == uint32(value[12]-'0')
}
