// Package testkit provides in-memory implementations of the data ports and
// a deterministic fixture generator, shared by the service and adapter tests.
package testkit

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"compendium/domain/catalog"
	"compendium/domain/core"
	"compendium/ports"
)

// BaseTime is the fixture's initial source modification time.
var BaseTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// Fixture is an in-memory TabularSource with a settable modification time.
type Fixture struct {
	SampleRows []catalog.Sample
	StudyRows  []catalog.Study
	Records    map[catalog.Table][]catalog.AbundanceRecord
	ModTime    time.Time
}

func NewFixture() *Fixture {
	return &Fixture{
		Records: make(map[catalog.Table][]catalog.AbundanceRecord),
		ModTime: BaseTime,
	}
}

func (f *Fixture) AddStudy(id core.StudyID, name string) *Fixture {
	f.StudyRows = append(f.StudyRows, catalog.Study{ID: id, Name: name})
	return f
}

func (f *Fixture) AddSample(s catalog.Sample) *Fixture {
	f.SampleRows = append(f.SampleRows, s)
	return f
}

func (f *Fixture) AddAbundance(table catalog.Table, records ...catalog.AbundanceRecord) *Fixture {
	f.Records[table] = append(f.Records[table], records...)
	return f
}

// Touch advances the source modification time, invalidating caches built
// against the previous value.
func (f *Fixture) Touch(t time.Time) {
	f.ModTime = t
}

func (f *Fixture) Samples(_ context.Context) ([]catalog.Sample, error) {
	return f.SampleRows, nil
}

func (f *Fixture) Studies(_ context.Context) ([]catalog.Study, error) {
	return f.StudyRows, nil
}

func (f *Fixture) Abundance(_ context.Context, table catalog.Table) ([]catalog.AbundanceRecord, error) {
	return f.Records[table], nil
}

func (f *Fixture) MaxModificationTime(_ context.Context, _ ...catalog.Table) (time.Time, error) {
	return f.ModTime, nil
}

var _ ports.TabularSource = (*Fixture)(nil)

// GenerateCompendium builds a seeded multi-study fixture: each study gets
// samplesPerStudy samples with ph and depth values and metabolomics records
// for a shared compound panel. Identical seeds produce identical fixtures.
func GenerateCompendium(seed int64, studies, samplesPerStudy int) *Fixture {
	rng := rand.New(rand.NewSource(seed))
	f := NewFixture()
	compounds := []string{"Glucose", "Glycine", "Sucrose", "Taurine", "Urea"}

	for s := 0; s < studies; s++ {
		studyID := core.StudyID(fmt.Sprintf("study-%d", s+1))
		f.AddStudy(studyID, fmt.Sprintf("Study %d", s+1))

		// Shift each study's baseline so studies are distinguishable.
		phBase := 6.0 + rng.Float64()*2.0
		for i := 0; i < samplesPerStudy; i++ {
			sampleID := core.SampleID(fmt.Sprintf("%s-sample-%d", studyID, i+1))
			lat := -60 + rng.Float64()*120
			lon := -180 + rng.Float64()*360
			collected := BaseTime.AddDate(0, 0, -rng.Intn(365))
			f.AddSample(catalog.Sample{
				ID:      sampleID,
				StudyID: studyID,
				Name:    string(sampleID),
				Physical: map[string]float64{
					"ph":    phBase + rng.NormFloat64()*0.2,
					"depth": 1 + rng.Float64()*50,
				},
				Ecosystem: map[string]string{
					"ecosystem_type": []string{"Soil", "Marine", "Freshwater"}[rng.Intn(3)],
				},
				Latitude:    &lat,
				Longitude:   &lon,
				CollectedAt: &collected,
			})

			for _, compound := range compounds {
				f.AddAbundance(catalog.TableMetabolomics, catalog.AbundanceRecord{
					SampleID:  sampleID,
					EntityID:  core.EntityID(compound),
					Abundance: rng.Float64() * 1000,
					Compound:  &catalog.CompoundMeta{CommonName: compound},
				})
			}
		}
	}
	return f
}

// MemStore is an in-memory CacheStore for tests.
type MemStore struct {
	Entries map[string]ports.CacheEntry
}

func NewMemStore() *MemStore {
	return &MemStore{Entries: make(map[string]ports.CacheEntry)}
}

func (m *MemStore) Get(_ context.Context, key string) (*ports.CacheEntry, error) {
	e, ok := m.Entries[key]
	if !ok {
		return nil, core.ErrCacheMiss
	}
	return &e, nil
}

func (m *MemStore) Put(_ context.Context, entry ports.CacheEntry) error {
	m.Entries[entry.Key] = entry
	return nil
}

func (m *MemStore) Delete(_ context.Context, key string) error {
	delete(m.Entries, key)
	return nil
}

func (m *MemStore) Clear(_ context.Context) error {
	m.Entries = make(map[string]ports.CacheEntry)
	return nil
}

var _ ports.CacheStore = (*MemStore)(nil)
