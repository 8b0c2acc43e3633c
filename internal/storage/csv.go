package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"sitewatch/internal/model"
)

// CSVRegistry reads the site list from a spreadsheet export with at least
// "Name" and "URL" columns and an optional "Logo URL" column. Header matching
// ignores case and surrounding space.
type CSVRegistry struct {
	Path string
}

func NewCSVRegistry(path string) *CSVRegistry {
	return &CSVRegistry{Path: path}
}

func (r *CSVRegistry) Sites(ctx context.Context) ([]model.SiteRecord, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		return nil, unavailable("open registry", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return ReadSitesCSV(f)
}

func ReadSitesCSV(in io.Reader) ([]model.SiteRecord, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("read registry header", err)
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	urlCol, ok := cols["url"]
	if !ok {
		return nil, unavailable("read registry", fmt.Errorf("missing URL column"))
	}
	nameCol := firstColumn(cols, "name", "website name", "site name")
	logoCol := firstColumn(cols, "logo url", "logo")

	var sites []model.SiteRecord
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, unavailable("read registry row", err)
		}
		site := model.SiteRecord{
			Name:    cell(rec, nameCol),
			URL:     cell(rec, urlCol),
			LogoURL: cell(rec, logoCol),
		}
		if site.URL == "" && site.Name == "" {
			continue
		}
		sites = append(sites, site)
	}
	return sites, nil
}

func firstColumn(cols map[string]int, names ...string) int {
	for _, n := range names {
		if i, ok := cols[n]; ok {
			return i
		}
	}
	return -1
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
