package interpret

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hpungsan/platenum/internal/errors"
)

//go:embed data/vehicle_numerology.json
var dataFS embed.FS

// DefaultTimeout bounds a data load when the caller passes zero.
const DefaultTimeout = 10 * time.Second

// maxDocumentBytes caps how much of a remote document is read.
const maxDocumentBytes = 1 << 20

// Record is the interpretation of a single digit.
type Record struct {
	Planet          string   `json:"planet"`
	PlanetEnglish   string   `json:"planet_english"`
	PositiveAspects []string `json:"positive_aspects"`
	NegativeAspects []string `json:"negative_aspects"`
	Advice          string   `json:"advice"`
	SuitableFor     string   `json:"suitable_for"`
}

// document is the on-disk shape of the data source.
type document struct {
	NumerologyData map[string]Record `json:"numerology_data"`
}

// Store maps digits 1–9 to their records. It is read-only after Load.
type Store struct {
	records map[int]Record
	source  string
}

// Load reads the data source once. source may be empty (embedded default data),
// a filesystem path, or an http(s) URL. Any failure is a DATA_LOAD error.
func Load(ctx context.Context, source string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rc, err := open(ctx, source)
	if err != nil {
		return nil, errors.NewDataLoad(err)
	}
	defer rc.Close()

	s, err := Parse(io.LimitReader(rc, maxDocumentBytes))
	if err != nil {
		return nil, err
	}
	s.source = source
	if s.source == "" {
		s.source = "embedded"
	}
	return s, nil
}

// open resolves source to a reader.
func open(ctx context.Context, source string) (io.ReadCloser, error) {
	switch {
	case source == "":
		return dataFS.Open("data/vehicle_numerology.json")
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: unexpected status %s", source, resp.Status)
		}
		return resp.Body, nil
	default:
		return os.Open(source)
	}
}

// Parse decodes a data document. Keys must be the digits "1".."9" and every
// record needs at least one positive and one negative aspect.
func Parse(r io.Reader) (*Store, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.NewDataLoad(fmt.Errorf("decode: %w", err))
	}
	if len(doc.NumerologyData) == 0 {
		return nil, errors.NewDataLoad(fmt.Errorf("missing or empty numerology_data"))
	}

	records := make(map[int]Record, len(doc.NumerologyData))
	for key, rec := range doc.NumerologyData {
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 || n > 9 {
			return nil, errors.NewDataLoad(fmt.Errorf("invalid key %q: want a digit 1-9", key))
		}
		if len(rec.PositiveAspects) == 0 || len(rec.NegativeAspects) == 0 {
			return nil, errors.NewDataLoad(fmt.Errorf("record %d: positive and negative aspects are required", n))
		}
		records[n] = rec
	}

	return &Store{records: records}, nil
}

// Lookup returns the record for n. A missing record is NOT_FOUND; every digit
// 1–9 should have one, so this points at a defect in the data source.
func (s *Store) Lookup(n int) (*Record, error) {
	rec, ok := s.records[n]
	if !ok {
		return nil, errors.NewNotFound(n)
	}
	return &rec, nil
}

// Len returns the number of loaded records.
func (s *Store) Len() int {
	return len(s.records)
}

// Source describes where the records came from.
func (s *Store) Source() string {
	return s.source
}
