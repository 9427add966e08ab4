package registry

import (
	"fmt"
	"strings"
	"time"

	"docserver/normalization"
	"docserver/quality"
)

// Entry запись справочника финансовых организаций.
type Entry struct {
	Name    string `json:"название"`
	Address string `json:"адрес"`
	INN     string `json:"инн,omitempty"`
	OGRN    string `json:"огрн,omitempty"`
}

// Snapshot неизменяемый срез справочников ЦБ РФ: банки по ОГРН, МФО по ИНН.
// Снимок создаётся целиком и не мутируется; обновление — это построение
// нового снимка и его атомарная подмена у владельца (см. Updater).
type Snapshot struct {
	banks    map[string]Entry // ключ — ОГРН
	mfo      map[string]Entry // ключ — ИНН
	loadedAt time.Time
}

// NewSnapshot строит снимок из произвольных карт. Карты копируются,
// чтобы снимок не зависел от дальнейшей жизни аргументов.
// Записи МФО с невалидным ИНН отбрасываются с ошибкой-описанием.
func NewSnapshot(banks, mfo map[string]Entry) (*Snapshot, error) {
	if banks == nil && mfo == nil {
		return nil, fmt.Errorf("both registries are nil")
	}

	s := &Snapshot{
		banks:    make(map[string]Entry, len(banks)),
		mfo:      make(map[string]Entry, len(mfo)),
		loadedAt: time.Now(),
	}

	for ogrn, e := range banks {
		if ogrn == "" || e.Name == "" {
			continue
		}
		e.OGRN = ogrn
		s.banks[ogrn] = e
	}

	for inn, e := range mfo {
		if inn == "" || e.Name == "" {
			continue
		}
		if !quality.ValidateINN(inn) {
			continue
		}
		e.INN = inn
		s.mfo[inn] = e
	}

	return s, nil
}

// LoadedAt время построения снимка.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Size возвращает количество банков и МФО в снимке.
func (s *Snapshot) Size() (banks, mfo int) {
	return len(s.banks), len(s.mfo)
}

// FindByNumber ищет организацию по регистрационному номеру:
// ОГРН среди банков, ИНН среди МФО.
func (s *Snapshot) FindByNumber(number string) (Entry, bool) {
	number = quality.CleanDigits(number)
	if number == "" {
		return Entry{}, false
	}

	if e, ok := s.banks[number]; ok {
		return e, true
	}
	if e, ok := s.mfo[number]; ok {
		return e, true
	}
	return Entry{}, false
}

// FindByName ищет организацию по названию. Сначала проверяется взаимное
// вхождение нормализованных названий (как их сравнивает справочник ЦБ),
// затем схожесть по Ратклиффу-Обершелпу с порогом дедупликации и
// пересечение основ слов как страховка от падежных форм.
func (s *Snapshot) FindByName(name string) (Entry, bool) {
	query := normalization.NormalizeOrgName(name)
	if query == "" {
		return Entry{}, false
	}

	var (
		best      Entry
		bestScore float64
	)

	check := func(e Entry) {
		candidate := normalization.NormalizeOrgName(e.Name)
		if candidate == "" {
			return
		}

		var score float64
		switch {
		case candidate == query:
			score = 1.0
		case containsEither(candidate, query):
			score = 0.95
		default:
			score = normalization.Ratio(query, candidate)
			if score < normalization.DedupThreshold {
				if normalization.TokenOverlap(query, candidate) >= 0.99 {
					score = normalization.DedupThreshold
				}
			}
		}

		if score > bestScore {
			bestScore = score
			best = e
		}
	}

	for _, e := range s.banks {
		check(e)
	}
	for _, e := range s.mfo {
		check(e)
	}

	if bestScore >= normalization.DedupThreshold {
		return best, true
	}
	return Entry{}, false
}

func containsEither(a, b string) bool {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len([]rune(b)) < 4 {
		// Слишком короткая строка даёт ложные вхождения
		return false
	}
	return strings.Contains(a, b)
}
