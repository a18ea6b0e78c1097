package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/talent-matcher/internal/recruiting"
)

// CSV keeps candidates and jobs in two header-mapped csv files.
// Column order on read does not matter; writes always use the canonical order.
type CSV struct {
	candidatesPath string
	jobsPath       string
}

func NewCSV(candidatesPath, jobsPath string) *CSV {
	return &CSV{
		candidatesPath: candidatesPath,
		jobsPath:       jobsPath,
	}
}

func (s *CSV) LoadCandidates(_ context.Context) (*recruiting.Candidates, error) {
	rows, err := readRows(s.candidatesPath)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	candidates := &recruiting.Candidates{Items: make([]*recruiting.Candidate, 0, len(rows))}
	for i, row := range rows {
		var rec candidateRecord
		if err := decodeRow(row, &rec); err != nil {
			return nil, fmt.Errorf("load candidates: row %d: %w", i+2, err)
		}
		c, err := rec.toCandidate()
		if err != nil {
			return nil, fmt.Errorf("load candidates: row %d: %w", i+2, err)
		}
		candidates.Items = append(candidates.Items, c)
	}
	return candidates, nil
}

func (s *CSV) LoadJobs(_ context.Context) (*recruiting.Jobs, error) {
	rows, err := readRows(s.jobsPath)
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}

	jobs := &recruiting.Jobs{Items: make([]*recruiting.Job, 0, len(rows))}
	for i, row := range rows {
		var rec jobRecord
		if err := decodeRow(row, &rec); err != nil {
			return nil, fmt.Errorf("load jobs: row %d: %w", i+2, err)
		}
		jobs.Items = append(jobs.Items, rec.toJob())
	}
	return jobs, nil
}

func (s *CSV) SaveCandidates(_ context.Context, candidates *recruiting.Candidates) error {
	records := make([][]string, 0, candidates.Len())
	for _, c := range candidates.Items {
		records = append(records, fromCandidate(c).values())
	}
	if err := writeRows(s.candidatesPath, candidateColumns, records); err != nil {
		return fmt.Errorf("save candidates: %w", err)
	}
	return nil
}

func (s *CSV) SaveJobs(_ context.Context, jobs *recruiting.Jobs) error {
	records := make([][]string, 0, jobs.Len())
	for _, j := range jobs.Items {
		records = append(records, fromJob(j).values())
	}
	if err := writeRows(s.jobsPath, jobColumns, records); err != nil {
		return fmt.Errorf("save jobs: %w", err)
	}
	return nil
}

func (s *CSV) Close() error {
	return nil
}

// readRows returns every data row keyed by its normalized header.
// A missing file reads as an empty collection.
func readRows(path string) ([]map[string]any, error) {
	if path == "" {
		return nil, errors.New("csv path is not configured")
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i, h := range header {
		header[i] = normalizeHeader(h)
	}

	var rows []map[string]any
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make(map[string]any, len(header))
		for i, value := range record {
			if i >= len(header) || header[i] == "" {
				continue
			}
			// Blank cells decode as zero values.
			if strings.TrimSpace(value) == "" {
				continue
			}
			row[header[i]] = strings.TrimSpace(value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

func decodeRow(row map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "csv",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(row)
}

// writeRows replaces path with the given rows. The file is written next to the
// target and renamed over it so readers never see a partial collection.
func writeRows(path string, header []string, records [][]string) error {
	if path == "" {
		return errors.New("csv path is not configured")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return err
	}
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
