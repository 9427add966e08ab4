package normalization

// Ratio вычисляет схожесть двух строк по алгоритму Ратклиффа-Обершелпа:
// удвоенное число совпавших символов, делённое на суммарную длину.
// Возвращает значение в диапазоне [0, 1].
func Ratio(s1, s2 string) float64 {
	r1 := []rune(s1)
	r2 := []rune(s2)

	total := len(r1) + len(r2)
	if total == 0 {
		return 1.0
	}

	matched := matchingRunes(r1, r2)
	return 2.0 * float64(matched) / float64(total)
}

// matchingRunes считает совпавшие символы: находит самую длинную общую
// подстроку и рекурсивно обрабатывает фрагменты слева и справа от неё.
func matchingRunes(r1, r2 []rune) int {
	if len(r1) == 0 || len(r2) == 0 {
		return 0
	}

	i, j, size := longestCommonBlock(r1, r2)
	if size == 0 {
		return 0
	}

	matched := size
	matched += matchingRunes(r1[:i], r2[:j])
	matched += matchingRunes(r1[i+size:], r2[j+size:])
	return matched
}

// longestCommonBlock находит самую длинную общую подстроку.
// Возвращает позицию в первой строке, во второй и длину.
func longestCommonBlock(r1, r2 []rune) (bestI, bestJ, bestSize int) {
	// lengths[j] — длина общего суффикса r1[:i] и r2[:j]
	lengths := make([]int, len(r2)+1)

	for i := 1; i <= len(r1); i++ {
		// Идём справа налево, чтобы обойтись одной строкой матрицы
		for j := len(r2); j >= 1; j-- {
			if r1[i-1] == r2[j-1] {
				lengths[j] = lengths[j-1] + 1
				if lengths[j] > bestSize {
					bestSize = lengths[j]
					bestI = i - bestSize
					bestJ = j - bestSize
				}
			} else {
				lengths[j] = 0
			}
		}
	}
	return bestI, bestJ, bestSize
}

// NameSimilarity сравнивает два названия организаций после нормализации.
func NameSimilarity(name1, name2 string) float64 {
	return Ratio(NormalizeOrgName(name1), NormalizeOrgName(name2))
}
