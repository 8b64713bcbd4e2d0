package identifier

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	ibanMinLength = 15
	ibanMaxLength = 34

	cardNumberLength = 16
	taxIDLength      = 9

	cifCheckLetters = "JABCDEFGHI"
)

var (
	cifPattern = regexp.MustCompile(`^[ABCDEFGHJKLMNPQRSUVW][0-9]{7}[0-9A-J]$`)
	nifPattern = regexp.MustCompile(`^[XYZ0-9][0-9]{7}[A-Z]$`)
)

// ValidateIban reports whether iban carries correct mod-97 control digits
func ValidateIban(iban string) (bool, error) {
	if len(iban) < ibanMinLength || len(iban) > ibanMaxLength {
		return false, invalidInput("IBAN", iban, "length must be between 15 and 34")
	}

	numeric, err := ibanNumeric(iban[4:] + iban[:4])
	if err != nil {
		return false, invalidInput("IBAN", iban, "only uppercase letters and digits are allowed")
	}

	remainder, err := Mod97Remainder(numeric)
	if err != nil {
		return false, err
	}

	return remainder == 1, nil
}

// CalculateControlDigits returns the two IBAN control digits for a country
// code and a BBAN (the IBAN without its first four characters)
func CalculateControlDigits(country, bban string) (int, error) {
	if len(country) != 2 {
		return 0, invalidInput("country code", country, "must be two letters")
	}
	if bban == "" {
		return 0, invalidInput("BBAN", bban, "empty")
	}

	numeric, err := ibanNumeric(bban + country + "00")
	if err != nil {
		return 0, invalidInput("BBAN", bban, "only uppercase letters and digits are allowed")
	}

	remainder, err := Mod97Remainder(numeric)
	if err != nil {
		return 0, err
	}

	return 98 - remainder, nil
}

// FormatIban assembles country, control digits and BBAN into an IBAN
func FormatIban(country string, control int, bban string) string {
	return country + twoDigits(control) + bban
}

// ValidateCardNumber reports whether number is a 16-digit Luhn-valid card number
func ValidateCardNumber(number string) (bool, error) {
	if len(number) != cardNumberLength {
		return false, invalidInput("card number", number, "must have 16 digits")
	}
	return LuhnValidate(number)
}

// ValidateCif reports whether code is a Spanish company tax code with a correct control character
func ValidateCif(code string) (bool, error) {
	if len(code) != taxIDLength {
		return false, invalidInput("CIF", code, "must have 9 characters")
	}
	if !cifPattern.MatchString(code) {
		return false, invalidInput("CIF", code, "must be a letter, 7 digits and a control character")
	}

	control := cifControl(code[1:8])
	digit := byte('0' + control)
	letter := cifCheckLetters[control]
	check := code[8]

	switch code[0] {
	case 'A', 'B', 'E', 'H':
		return check == digit, nil
	case 'K', 'P', 'Q', 'R', 'S', 'N', 'W':
		return check == letter, nil
	default:
		return check == digit || check == letter, nil
	}
}

// cifControl folds the seven CIF digits: digits at odd positions (1st, 3rd,
// 5th, 7th) are doubled and their two digits added, even positions are summed.
func cifControl(digits string) int {
	total := 0
	for i := 0; i < len(digits); i++ {
		d := int(digits[i] - '0')
		if i%2 == 0 {
			d *= 2
			d = d/10 + d%10
		}
		total += d
	}
	return (10 - total%10) % 10
}

// ValidateNif reports whether code is a DNI (8 digits + letter) or NIE
// (X/Y/Z + 7 digits + letter) with the right mod-23 letter
func ValidateNif(code string) (bool, error) {
	if len(code) != taxIDLength {
		return false, invalidInput("NIF", code, "must have 9 characters")
	}
	if !nifPattern.MatchString(code) {
		return false, invalidInput("NIF", code, "must be 8 digits (or X/Y/Z and 7 digits) and a letter")
	}

	numeric := strings.NewReplacer("X", "0", "Y", "1", "Z", "2").Replace(code[:8])
	n, err := strconv.Atoi(numeric)
	if err != nil {
		return false, invalidInput("NIF", code, "numeric part is not a number")
	}

	letter, err := Mod23Letter(n)
	if err != nil {
		return false, err
	}

	return rune(code[8]) == letter, nil
}

// ValidateTaxID accepts either a CIF or a NIF. The shape picks the rule:
// codes starting with a digit or X/Y/Z are NIFs, anything else a CIF.
func ValidateTaxID(code string) (bool, error) {
	if code == "" {
		return false, invalidInput("tax id", code, "empty")
	}
	switch c := code[0]; {
	case c >= '0' && c <= '9', c == 'X', c == 'Y', c == 'Z':
		return ValidateNif(code)
	default:
		return ValidateCif(code)
	}
}

// ibanNumeric maps letters to two-digit numbers (A=10 ... Z=35) and keeps digits
func ibanNumeric(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s) * 2)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteString(strconv.Itoa(int(c-'A') + 10))
		default:
			return "", invalidInput("IBAN character", string(c), "not alphanumeric")
		}
	}

	return b.String(), nil
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
