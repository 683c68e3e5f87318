package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"camisfut-storefront/internal/domain"
)

// OverlayWriter receives one overlay entry per imported jersey.
type OverlayWriter interface {
	Upsert(ctx context.Context, entry domain.OverlayEntry) error
}

// Columns is the header written by ExportCSV and understood by Run.
var Columns = []string{
	"id", "nombre", "descripcion", "precio", "club", "tipo", "categoria",
	"liga", "retro", "destacado", "stock", "tallas", "imagen",
}

// CSVImporter reads jersey rows and stores them as admin overlay entries.
// A row without id continues the previous jersey and may only add images.
type CSVImporter struct {
	reader  *csv.Reader
	overlay OverlayWriter
}

func NewCSVImporter(r io.Reader, overlay OverlayWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // spreadsheets drop trailing empty cells
	return &CSVImporter{reader: csvr, overlay: overlay}
}

type csvRow struct {
	ID       int
	Product  domain.Product
	ImageURL string
}

// Run parses all rows and upserts one entry per jersey. It returns the
// number of jerseys written before the first failure.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["id"]; !ok {
		return 0, fmt.Errorf("%w: missing id column", domain.ErrValidation)
	}

	var (
		current  *domain.Product
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if row == nil {
			continue
		}

		if row.ID != 0 {
			if current != nil {
				if err := i.save(ctx, *current); err != nil {
					return imported, err
				}
				imported++
			}
			p := row.Product
			current = &p
			continue
		}

		if current != nil && row.ImageURL != "" {
			current.Images = append(current.Images, row.ImageURL)
		}
	}

	if current != nil {
		if err := i.save(ctx, *current); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, p domain.Product) error {
	if p.Name == "" || p.Price <= 0 {
		return fmt.Errorf("%w: jersey %d needs nombre and a positive precio", domain.ErrValidation, p.ID)
	}
	if len(p.Sizes) == 0 {
		p.Sizes = append([]string(nil), domain.DefaultSizes...)
	}
	if len(p.Images) == 0 {
		p.Images = []string{domain.DefaultImage}
	}
	p.CategoryIDs = domain.DeriveTags(p)
	p.Modified = true

	entry, err := domain.NewOverlayEntry(p)
	if err != nil {
		return err
	}
	if err := i.overlay.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("upsert jersey %d: %w", p.ID, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	idStr := pick(record, index, "id")
	image := pick(record, index, "imagen")
	if idStr == "" {
		if image == "" {
			return nil, nil
		}
		return &csvRow{ImageURL: image}, nil
	}

	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: invalid id %q", domain.ErrValidation, idStr)
	}
	price, err := parseFloat(pick(record, index, "precio"))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid precio for jersey %d", domain.ErrValidation, id)
	}
	stock, err := parseInt(pick(record, index, "stock"))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid stock for jersey %d", domain.ErrValidation, id)
	}

	p := domain.Product{
		ID:          id,
		Name:        pick(record, index, "nombre"),
		Description: pick(record, index, "descripcion"),
		Price:       price,
		Club:        pick(record, index, "club"),
		Type:        orDefault(pick(record, index, "tipo"), domain.TypeNew),
		Category:    orDefault(pick(record, index, "categoria"), domain.CategoryClubs),
		League:      pick(record, index, "liga"),
		Retro:       parseBool(pick(record, index, "retro")),
		Featured:    parseBool(pick(record, index, "destacado")),
		Stock:       stock,
		Sizes:       splitList(pick(record, index, "tallas")),
	}
	if image != "" {
		p.Images = []string{image}
	}
	return &csvRow{ID: id, Product: p}, nil
}

// ExportCSV writes products in the import layout, one image per row.
func ExportCSV(w io.Writer, products []domain.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, p := range products {
		first := ""
		if len(p.Images) > 0 {
			first = p.Images[0]
		}
		rec := []string{
			strconv.Itoa(p.ID), p.Name, p.Description,
			strconv.FormatFloat(p.Price, 'f', -1, 64),
			p.Club, p.Type, p.Category, p.League,
			strconv.FormatBool(p.Retro), strconv.FormatBool(p.Featured),
			strconv.Itoa(p.Stock), strings.Join(p.Sizes, ";"), first,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
		for _, img := range p.Images[min(1, len(p.Images)):] {
			extra := make([]string, len(Columns))
			extra[len(Columns)-1] = img
			if err := cw.Write(extra); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "si", "sí", "yes":
		return true
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '|' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
