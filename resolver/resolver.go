package resolver

import (
	"context"
	"log"
	"strings"

	"docserver/lookup"
	"docserver/normalization"
	"docserver/quality"
	"docserver/registry"
)

// Identity установленная идентичность организации-кредитора.
type Identity struct {
	Name    string `json:"название"`
	INN     string `json:"инн"`
	OGRN    string `json:"огрн"`
	Address string `json:"адрес"`
	// Source откуда взята идентичность: registry, lookup, name-only
	Source string `json:"-"`
}

// Finder внешний поиск организаций.
type Finder interface {
	Find(ctx context.Context, query string) (*lookup.Candidate, error)
}

// SnapshotProvider отдаёт актуальный срез реестров ЦБ.
type SnapshotProvider interface {
	Snapshot() *registry.Snapshot
}

// Resolver устанавливает идентичность кредитора.
// Порядок источников: реестры ЦБ по номеру, реестры ЦБ по названию,
// внешний поиск с проверкой. Если все источники отказали, организация
// остаётся идентифицированной только названием: неверный ИНН в документах
// должника хуже, чем его отсутствие.
type Resolver struct {
	registry SnapshotProvider
	finder   Finder
}

// New создает новый резолвер
func New(reg SnapshotProvider, finder Finder) *Resolver {
	return &Resolver{registry: reg, finder: finder}
}

// Resolve устанавливает идентичность организации по названию и,
// если известен, номеру (ИНН или ОГРН) из документов.
func (r *Resolver) Resolve(ctx context.Context, name, number string) Identity {
	name = strings.TrimSpace(name)
	snap := r.registry.Snapshot()

	// Номер из документов проверяем контрольной суммой прежде,
	// чем искать по нему: распознавание искажает цифры.
	if number != "" {
		clean := quality.CleanDigits(number)
		if quality.ValidateINN(clean) || quality.ValidateOGRN(clean) {
			if entry, ok := snap.FindByNumber(clean); ok {
				return identityFromEntry(entry, "registry")
			}
		}
	}

	if entry, ok := snap.FindByName(name); ok {
		return identityFromEntry(entry, "registry")
	}

	if r.finder != nil {
		if id, ok := r.resolveByLookup(ctx, name, snap); ok {
			return id
		}
	}

	return Identity{Name: name, Source: "name-only"}
}

// resolveByLookup пробует внешний поиск. Найденный ИНН сначала
// прогоняется через реестры: запись ЦБ полнее и надёжнее карточки сайта.
func (r *Resolver) resolveByLookup(ctx context.Context, name string, snap *registry.Snapshot) (Identity, bool) {
	cand, err := r.finder.Find(ctx, name)
	if err != nil {
		log.Printf("[RESOLVER] внешний поиск %q: %v", name, err)
		return Identity{}, false
	}

	res := lookup.Validate(name, cand)
	if !res.Accepted {
		if cand != nil {
			log.Printf("[RESOLVER] кандидат для %q отклонён: %s", name, res.Reason)
		}
		return Identity{}, false
	}

	if entry, ok := snap.FindByNumber(cand.INN); ok {
		return identityFromEntry(entry, "registry"), true
	}

	return Identity{
		Name:    normalizeAccepted(name, cand.Name),
		INN:     cand.INN,
		Address: cand.Address,
		Source:  "lookup",
	}, true
}

// normalizeAccepted выбирает название для принятого кандидата.
// Название с сайта берётся только если оно заметно полнее исходного.
func normalizeAccepted(query, found string) string {
	if len([]rune(found)) > len([]rune(query)) &&
		normalization.NameSimilarity(query, found) >= normalization.LookupAcceptThreshold {
		return found
	}
	return query
}

func identityFromEntry(entry registry.Entry, source string) Identity {
	return Identity{
		Name:    entry.Name,
		INN:     entry.INN,
		OGRN:    entry.OGRN,
		Address: entry.Address,
		Source:  source,
	}
}
