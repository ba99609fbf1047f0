package validation

const documentLength = 11

// IsDocumentValid checks an 11-digit national id number against its two
// mod-11 check digits. Non-digit characters are stripped before any check.
func IsDocumentValid(document string) bool {
	if document == "" {
		return false
	}

	digits := cleanDocument(document)
	if len(digits) != documentLength {
		return false
	}
	if allDigitsSame(digits) {
		return false
	}

	first := checkDigit(digits[:9], 10)
	second := checkDigit(digits[:10], 11)

	return digits[9] == first && digits[10] == second
}

// cleanDocument keeps only ASCII digits, converted to their numeric values.
func cleanDocument(document string) []int {
	digits := make([]int, 0, len(document))
	for _, ch := range document {
		if ch >= '0' && ch <= '9' {
			digits = append(digits, int(ch-'0'))
		}
	}
	return digits
}

func allDigitsSame(digits []int) bool {
	for _, d := range digits[1:] {
		if d != digits[0] {
			return false
		}
	}
	return true
}

// checkDigit weights the digits with factor, factor-1, ... and reduces the sum mod 11.
func checkDigit(digits []int, factor int) int {
	total := 0
	for _, d := range digits {
		total += d * factor
		factor--
	}

	rest := total % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}
