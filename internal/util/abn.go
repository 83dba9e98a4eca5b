package util

import "strings"

// abnWeights are the ATO weighting factors for ABN checksum validation.
var abnWeights = [11]int{10, 1, 3, 5, 7, 9, 11, 13, 15, 17, 19}

// ValidateABN checks an Australian Business Number using the ATO weighted
// checksum: subtract 1 from the first digit, multiply each digit by its
// weight, and the sum must be divisible by 89. Spaces are ignored so
// formatted input like "51 824 753 556" is accepted.
func ValidateABN(abn string) bool {
	cleaned := strings.ReplaceAll(abn, " ", "")
	if len(cleaned) != 11 {
		return false
	}

	sum := 0
	for i, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
		digit := int(r - '0')
		if i == 0 {
			digit--
			if digit < 0 {
				return false
			}
		}
		sum += digit * abnWeights[i]
	}

	return sum%89 == 0
}
