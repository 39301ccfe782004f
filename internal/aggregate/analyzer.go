package aggregate

import (
	"math"
	"regexp"
	"strings"
)

// legalCategories is ordered: when two categories tie on keyword count the
// earlier one wins, so the slice order is part of the contract.
var legalCategories = []struct {
	name  string
	terms []string
}{
	{"regulation", []string{"نظام", "لائحة", "قانون", "تنظيم"}},
	{"court_ruling", []string{"حكم", "قرار", "محكمة", "قضية", "دعوى"}},
	{"contract", []string{"عقد", "اتفاقية", "مقاولة", "شراكة"}},
	{"law_article", []string{"مادة", "فقرة", "بند", "فصل"}},
	{"judicial_collection", []string{"مجموعة", "أحكام", "قضائية", "سابقة"}},
}

var (
	articlePattern = regexp.MustCompile(`مادة\s*(\d+)`)
	datePattern    = regexp.MustCompile(`\d{4}/\d{1,2}/\d{1,2}|\d{4}هـ|\d{4}\s*م`)
)

// TypeAnalysis is the outcome of classifying a document's text.
type TypeAnalysis struct {
	DocumentType   string
	TypeConfidence float64
	TermsFound     []string
	ArticleCount   int
	ContainsDates  bool
}

// AnalyzeDocumentType classifies the document by counting occurrences of
// Arabic legal keywords per category. Confidence is the winning category's
// keyword count over the configured divisor, capped at 1.
func (a *Aggregator) AnalyzeDocumentType(text string) TypeAnalysis {
	lower := strings.ToLower(text)

	analysis := TypeAnalysis{DocumentType: "unknown"}
	maxCount := 0

	for _, category := range legalCategories {
		count := 0
		for _, term := range category.terms {
			occurrences := strings.Count(lower, term)
			count += occurrences
			if occurrences > 0 {
				analysis.TermsFound = append(analysis.TermsFound, term)
			}
		}
		if count > maxCount {
			maxCount = count
			analysis.DocumentType = category.name
		}
	}

	analysis.TypeConfidence = math.Min(float64(maxCount)/a.typeConfidenceDivisor, 1.0)
	analysis.ArticleCount = len(articlePattern.FindAllString(text, -1))
	analysis.ContainsDates = datePattern.MatchString(text)

	return analysis
}
