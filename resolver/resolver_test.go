package resolver

import (
	"context"
	"errors"
	"testing"

	"docserver/lookup"
	"docserver/registry"
)

type staticSnapshot struct{ snap *registry.Snapshot }

func (s staticSnapshot) Snapshot() *registry.Snapshot { return s.snap }

type staticFinder struct {
	cand *lookup.Candidate
	err  error
}

func (f staticFinder) Find(_ context.Context, _ string) (*lookup.Candidate, error) {
	return f.cand, f.err
}

func testRegistry(t *testing.T) SnapshotProvider {
	t.Helper()
	banks := map[string]registry.Entry{
		"1027700132195": {
			Name:    "ПАО «Сбербанк»",
			INN:     "7707083893",
			OGRN:    "1027700132195",
			Address: "г. Москва, ул. Вавилова, д. 19",
		},
	}
	mfo := map[string]registry.Entry{
		"7708400979": {
			Name:    `ООО МКК "А ДЕНЬГИ"`,
			INN:     "7708400979",
			Address: "г. Москва",
		},
	}
	snap, err := registry.NewSnapshot(banks, mfo)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	return staticSnapshot{snap}
}

func TestResolveByNumber(t *testing.T) {
	r := New(testRegistry(t), nil)

	id := r.Resolve(context.Background(), "Сбербанк", "7707083893")
	if id.Source != "registry" || id.OGRN != "1027700132195" {
		t.Errorf("неожиданная идентичность: %+v", id)
	}
}

func TestResolveBadNumberFallsBackToName(t *testing.T) {
	r := New(testRegistry(t), nil)

	// ИНН с битой контрольной суммой игнорируется, имя находит запись
	id := r.Resolve(context.Background(), "ПАО Сбербанк", "9548295777")
	if id.Source != "registry" || id.INN != "7707083893" {
		t.Errorf("неожиданная идентичность: %+v", id)
	}
}

func TestResolveByLookupAccepted(t *testing.T) {
	r := New(testRegistry(t), staticFinder{
		cand: &lookup.Candidate{Name: `ООО МКК "Русзаймсервис"`, INN: "5407496776", Address: "г. Новосибирск"},
	})

	id := r.Resolve(context.Background(), "МКК Русзаймсервис", "")
	if id.Source != "lookup" || id.INN != "5407496776" {
		t.Errorf("неожиданная идентичность: %+v", id)
	}
}

func TestResolveLookupINNPromotedToRegistry(t *testing.T) {
	// Поиск вернул ИНН организации из реестра: берём запись реестра
	r := New(testRegistry(t), staticFinder{
		cand: &lookup.Candidate{Name: `ООО МКК "А ДЕНЬГИ"`, INN: "7708400979"},
	})

	id := r.Resolve(context.Background(), "А Деньги МКК", "")
	if id.Source != "registry" || id.Address != "г. Москва" {
		t.Errorf("неожиданная идентичность: %+v", id)
	}
}

func TestResolveRejectedCandidate(t *testing.T) {
	r := New(testRegistry(t), staticFinder{
		cand: &lookup.Candidate{Name: "ОВД по Заельцовскому району", INN: "5402156014"},
	})

	id := r.Resolve(context.Background(), "МКК Русзаймсервис", "")
	if id.Source != "name-only" || id.INN != "" {
		t.Errorf("отклонённый кандидат просочился: %+v", id)
	}
	if id.Name != "МКК Русзаймсервис" {
		t.Errorf("имя = %q", id.Name)
	}
}

func TestResolveLookupError(t *testing.T) {
	r := New(testRegistry(t), staticFinder{err: errors.New("timeout")})

	id := r.Resolve(context.Background(), "ООО Неизвестная Компания", "")
	if id.Source != "name-only" {
		t.Errorf("ошибка поиска должна давать name-only: %+v", id)
	}
}
