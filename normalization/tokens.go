package normalization

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

// StemTokens разбивает текст на слова и приводит каждое к основе
// стеммером Snowball для русского языка. Слова, которые стеммер не
// смог обработать, возвращаются как есть.
func StemTokens(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		stemmed, err := snowball.Stem(w, "russian", true)
		if err != nil || stemmed == "" {
			stemmed = w
		}
		tokens = append(tokens, stemmed)
	}
	return tokens
}

// TokenOverlap вычисляет индекс Жаккара для множеств основ слов двух
// строк. Используется как дополнительный сигнал при поиске организации
// в справочнике: «Сбербанка» и «Сбербанк» дают одну основу.
func TokenOverlap(s1, s2 string) float64 {
	set1 := toSet(StemTokens(s1))
	set2 := toSet(StemTokens(s2))

	if len(set1) == 0 && len(set2) == 0 {
		return 1.0
	}
	if len(set1) == 0 || len(set2) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range set1 {
		if set2[tok] {
			intersection++
		}
	}

	union := len(set1) + len(set2) - intersection
	return float64(intersection) / float64(union)
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
