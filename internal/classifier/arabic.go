package classifier

import (
	"regexp"
	"strings"
	"unicode"
)

// Diacritics (tashkeel), the superscript alef and the tatweel stretch
// character carry no content for retrieval or comparison.
var diacritics = regexp.MustCompile(`[\x{064B}-\x{065F}\x{0670}\x{0640}]`)

var arabicNormalizations = strings.NewReplacer(
	"أ", "ا",
	"إ", "ا",
	"آ", "ا",
	"ة", "ه",
	"ي", "ى",
)

// CleanArabicText normalizes extracted Arabic text: whitespace collapsed to
// single spaces, alef variants folded to bare alef, teh marbuta to heh,
// yeh to alef maqsura, and diacritics stripped.
func CleanArabicText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	text = arabicNormalizations.Replace(text)
	return diacritics.ReplaceAllString(text, "")
}

// QualityScore rates extracted text 0..1 on how readable it looks. It is
// used as the confidence estimate for backends that do not report one.
func QualityScore(text string) float64 {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return 0
	}

	totalRunes := 0
	printableCount := 0
	letterCount := 0

	for _, r := range text {
		totalRunes++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printableCount++
		}
		if unicode.IsLetter(r) {
			letterCount++
		}
	}

	printableRatio := float64(printableCount) / float64(totalRunes)
	letterRatio := float64(letterCount) / float64(totalRunes)

	return printableRatio*0.6 + letterRatio*0.4
}
