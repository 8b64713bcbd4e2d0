// Package identifier validates and generates banking identifiers: IBANs,
// card numbers and Spanish tax codes (CIF, NIF/NIE).
package identifier

import "strconv"

const (
	// mod97ChunkSize keeps "remainder (2 digits) + chunk" within 9 digits
	mod97ChunkSize = 7

	mod23Table = "TRWAGMYFPDXBNJZSQVHLCKE"
)

// Mod97Remainder returns digits mod 97 for an arbitrarily long digit string
func Mod97Remainder(digits string) (int, error) {
	if digits == "" {
		return 0, invalidInput("digit string", digits, "empty")
	}

	remainder := 0
	for start := 0; start < len(digits); start += mod97ChunkSize {
		end := min(start+mod97ChunkSize, len(digits))

		block := remainder
		for i := start; i < end; i++ {
			c := digits[i]
			if c < '0' || c > '9' {
				return 0, invalidInput("digit string", digits, "contains non-digit characters")
			}
			block = block*10 + int(c-'0')
		}
		remainder = block % 97
	}

	return remainder, nil
}

// LuhnCheckDigit computes the digit that, appended to payload, makes it pass
// LuhnValidate. Doubling starts at the rightmost payload digit, which for a
// 15-digit payload is the same as starting at the most significant one.
func LuhnCheckDigit(payload string) (int, error) {
	if payload == "" {
		return 0, invalidInput("card payload", payload, "empty")
	}

	sum, ok := luhnSum(payload, true)
	if !ok {
		return 0, invalidInput("card payload", payload, "contains non-digit characters")
	}

	return (10 - sum%10) % 10, nil
}

// LuhnValidate reports whether number passes the Luhn check
func LuhnValidate(number string) (bool, error) {
	if number == "" {
		return false, invalidInput("card number", number, "empty")
	}

	sum, ok := luhnSum(number, false)
	if !ok {
		return false, invalidInput("card number", number, "contains non-digit characters")
	}

	return sum%10 == 0, nil
}

// luhnSum walks from the least significant digit, doubling every other one.
// doubleFirst selects whether the rightmost digit itself is doubled.
func luhnSum(number string, doubleFirst bool) (int, bool) {
	sum := 0
	double := doubleFirst

	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return 0, false
		}

		digit := int(c - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
		double = !double
	}

	return sum, true
}

// Mod23Letter returns the control letter of a DNI/NIE numeric part
func Mod23Letter(numericPart int) (rune, error) {
	if numericPart < 0 {
		return 0, invalidInput("numeric part", strconv.Itoa(numericPart), "negative")
	}
	return rune(mod23Table[numericPart%23]), nil
}
