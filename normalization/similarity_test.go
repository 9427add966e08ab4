package normalization

import (
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		s1   string
		s2   string
		min  float64
		max  float64
	}{
		{
			name: "identical strings",
			s1:   "МКК А ДЕНЬГИ",
			s2:   "МКК А ДЕНЬГИ",
			min:  1.0,
			max:  1.0,
		},
		{
			name: "typo in creditor name",
			s1:   "Трумвират",
			s2:   "Триумвират",
			min:  0.85,
			max:  1.0,
		},
		{
			name: "unrelated organizations",
			s1:   "МКК РУСЗАЙМСЕРВИС",
			s2:   "ОВД ПО КИРОВСКОМУ МУНИЦИПАЛЬНОМУ РАЙОНУ",
			min:  0.0,
			max:  0.5,
		},
		{
			name: "both empty",
			s1:   "",
			s2:   "",
			min:  1.0,
			max:  1.0,
		},
		{
			name: "one empty",
			s1:   "СБЕРБАНК",
			s2:   "",
			min:  0.0,
			max:  0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.s1, tt.s2)
			if got < tt.min || got > tt.max {
				t.Errorf("Ratio(%q, %q) = %.3f, want in [%.2f, %.2f]", tt.s1, tt.s2, got, tt.min, tt.max)
			}
		})
	}
}

func TestNameSimilarity(t *testing.T) {
	// ОПФ и кавычки не должны влиять на схожесть
	got := NameSimilarity(`МКК А Деньги`, `ООО МКК «А Деньги»`)
	if got < 0.99 {
		t.Errorf("NameSimilarity with OPF stripped = %.3f, want 1.0", got)
	}

	got = NameSimilarity("МКК Русзаймсервис", "ОВД по Кировскому Муниципальному району")
	if got >= LookupAcceptThreshold {
		t.Errorf("NameSimilarity for unrelated orgs = %.3f, want < %.2f", got, LookupAcceptThreshold)
	}
}

func TestNormalizeOrgName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`ООО МКК «А Деньги»`, "МКК А ДЕНЬГИ"},
		{`Общество С Ограниченной Ответственностью МКК Денежная Крепость`, "МКК ДЕНЕЖНАЯ КРЕПОСТЬ"},
		{`ПАО "Сбербанк"`, "СБЕРБАНК"},
		{"  АО   Альфа-Банк  ", "АЛЬФА-БАНК"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeOrgName(tt.in); got != tt.want {
			t.Errorf("NormalizeOrgName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeBankName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`АКБ "Русский Трастовый Банк" (АО)`, "АО АКБ «Русский Трастовый Банк»"},
		{`ООО КБ "Альтайкапиталбанк" (ООО)`, "ООО КБ «Альтайкапиталбанк»"},
		{`ПАО Сбербанк`, "ПАО «Сбербанк»"},
	}

	for _, tt := range tests {
		if got := NormalizeBankName(tt.in); got != tt.want {
			t.Errorf("NormalizeBankName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFinancialMarkers(t *testing.T) {
	if !HasFinancialMarker("МКК РУСЗАЙМСЕРВИС") {
		t.Error("МКК must be recognized as a financial marker")
	}
	if HasFinancialMarker("ГОТИКА") {
		t.Error("ГОТИКА must not carry a financial marker")
	}
	if !HasStopWord("ОВД ПО КИРОВСКОМУ МУНИЦИПАЛЬНОМУ РАЙОНУ") {
		t.Error("ОВД must be a stop word")
	}
}

func TestTokenOverlap(t *testing.T) {
	// Одна основа после стемминга
	if got := TokenOverlap("Сбербанк", "Сбербанка"); got < 0.99 {
		t.Errorf("TokenOverlap for inflected forms = %.3f, want 1.0", got)
	}
	if got := TokenOverlap("Сбербанк", "Альфа-Банк"); got > 0.5 {
		t.Errorf("TokenOverlap for different banks = %.3f, want low", got)
	}
}
