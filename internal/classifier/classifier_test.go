package classifier

import (
	"strings"
	"testing"

	"github.com/qaanoonAI/legal-ocr-service/internal/models"
)

func TestNeedsOCR(t *testing.T) {
	c := New(models.ClassifierConfig{})

	longArabic := strings.Repeat("صدر نظام المحاكم التجارية بالمرسوم الملكي ", 3)
	longEnglish := strings.Repeat("The commercial courts law was issued by royal decree. ", 2)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "empty page",
			text: "",
			want: true,
		},
		{
			name: "whitespace only",
			text: "   \n\t  ",
			want: true,
		},
		{
			name: "below char threshold",
			text: "نظام قصير",
			want: true,
		},
		{
			name: "clean arabic text",
			text: longArabic,
			want: false,
		},
		{
			name: "clean english text",
			text: longEnglish,
			want: false,
		},
		{
			name: "mostly unrecognizable glyphs",
			text: strings.Repeat("衣服鞋子帽子袜子手套围巾", 10),
			want: true,
		},
		{
			name: "artifact glyph density over limit",
			text: longArabic + strings.Repeat("�", 20),
			want: true,
		},
		{
			name: "few artifacts tolerated",
			text: longArabic + "�",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.NeedsOCR(tt.text); got != tt.want {
				t.Errorf("NeedsOCR(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNeedsOCRConfiguredThresholds(t *testing.T) {
	c := New(models.ClassifierConfig{CharThreshold: 5})

	if c.NeedsOCR("نظام العمل") {
		t.Error("expected short text to pass with a lowered char threshold")
	}
}

func TestCleanArabicText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "whitespace collapse",
			in:   "نظام   المحاكم\n\nالتجارية",
			want: "نظام المحاكم التجاريه",
		},
		{
			name: "alef normalization",
			in:   "أحكام إدارية آجلة",
			want: "احكام اداريه اجله",
		},
		{
			name: "teh marbuta and yeh",
			in:   "محكمة قضايي",
			want: "محكمه قضاىى",
		},
		{
			name: "diacritics stripped",
			in:   "نِظَامُ العَمَلِ",
			want: "نظام العمل",
		},
		{
			name: "tatweel stripped",
			in:   "نظـــام",
			want: "نظام",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanArabicText(tt.in); got != tt.want {
				t.Errorf("CleanArabicText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestQualityScore(t *testing.T) {
	if got := QualityScore(""); got != 0 {
		t.Errorf("empty text should score 0, got %f", got)
	}

	clean := QualityScore("نظام المحاكم التجارية الصادر بالمرسوم الملكي")
	if clean < 0.8 || clean > 1.0 {
		t.Errorf("clean arabic text should score high, got %f", clean)
	}

	garbage := QualityScore("\x01\x02\x03\x04 . . . . 1 2 3")
	if garbage >= clean {
		t.Errorf("garbage (%f) should score below clean text (%f)", garbage, clean)
	}
}
