package tables

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"compendium/domain/catalog"
	"compendium/domain/core"
	"compendium/internal"
	"compendium/ports"
)

var _ ports.TabularSource = (*FileSource)(nil)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FileSource reads the source tables from a data directory: one file per
// logical table, named <table>.csv or <table>.xlsx. Optional tables may be
// absent; their records read as empty and they contribute nothing to the
// freshness oracle.
type FileSource struct {
	dir string
	log *internal.Logger
}

func NewFileSource(dir string, log *internal.Logger) *FileSource {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &FileSource{dir: dir, log: log}
}

// resolve finds the backing file of a logical table, preferring CSV.
func (s *FileSource) resolve(table catalog.Table) (string, bool) {
	for _, ext := range []string{".csv", ".xlsx"} {
		path := filepath.Join(s.dir, string(table)+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func (s *FileSource) Samples(_ context.Context) ([]catalog.Sample, error) {
	path, ok := s.resolve(catalog.TableSamples)
	if !ok {
		return nil, fmt.Errorf("samples table not found in %s", s.dir)
	}
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	samples := make([]catalog.Sample, 0, len(rows))
	for _, row := range rows {
		id := row["id"]
		if id == "" {
			continue
		}
		sample := catalog.Sample{
			ID:      core.SampleID(id),
			StudyID: core.StudyID(row["study_id"]),
			Name:    row["name"],
		}

		for _, variable := range catalog.DefaultPhysicalVariables() {
			if v, ok := parseFloat(row[variable]); ok {
				if sample.Physical == nil {
					sample.Physical = make(map[string]float64)
				}
				sample.Physical[variable] = v
			}
		}
		for _, variable := range catalog.EcosystemVariables() {
			if v := row[variable]; v != "" {
				if sample.Ecosystem == nil {
					sample.Ecosystem = make(map[string]string)
				}
				sample.Ecosystem[variable] = v
			}
		}

		if lat, ok := parseFloat(row["latitude"]); ok {
			sample.Latitude = &lat
		}
		if lon, ok := parseFloat(row["longitude"]); ok {
			sample.Longitude = &lon
		}
		if t, ok := parseDate(row["collection_date"]); ok {
			sample.CollectedAt = &t
		}

		samples = append(samples, sample)
	}
	return samples, nil
}

func (s *FileSource) Studies(_ context.Context) ([]catalog.Study, error) {
	path, ok := s.resolve(catalog.TableStudies)
	if !ok {
		return nil, fmt.Errorf("studies table not found in %s", s.dir)
	}
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	studies := make([]catalog.Study, 0, len(rows))
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		studies = append(studies, catalog.Study{
			ID:   core.StudyID(row["id"]),
			Name: row["name"],
		})
	}
	return studies, nil
}

func (s *FileSource) Abundance(_ context.Context, table catalog.Table) ([]catalog.AbundanceRecord, error) {
	spec, ok := specFor(table)
	if !ok {
		return nil, fmt.Errorf("%q is not an abundance table", table)
	}
	path, found := s.resolve(table)
	if !found {
		s.log.Debug("table %s absent from %s", table, s.dir)
		return nil, nil
	}
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}

	records := make([]catalog.AbundanceRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		id := row[spec.idColumn]
		value, ok := parseFloat(row[spec.valueColumn])
		if id == "" || !ok {
			skipped++
			continue
		}

		record := catalog.AbundanceRecord{
			SampleID:  core.SampleID(row["sample_id"]),
			EntityID:  core.EntityID(id),
			Abundance: value,
		}
		if spec.rankColumn != "" {
			record.Rank = catalog.Rank(row[spec.rankColumn])
		}
		fields := spec.meta(func(column string) string { return row[column] })
		record.Compound = fields.compound
		record.Lipid = fields.lipid
		record.Protein = fields.protein
		record.Taxon = fields.taxon

		records = append(records, record)
	}
	if skipped > 0 {
		s.log.Debug("table %s: skipped %d rows without id or numeric value", table, skipped)
	}
	return records, nil
}

// MaxModificationTime reports the latest mtime across the named tables'
// backing files. Absent tables are skipped.
func (s *FileSource) MaxModificationTime(_ context.Context, tables ...catalog.Table) (time.Time, error) {
	var max time.Time
	for _, table := range tables {
		path, ok := s.resolve(table)
		if !ok {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return time.Time{}, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.ModTime().After(max) {
			max = info.ModTime()
		}
	}
	return max, nil
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
