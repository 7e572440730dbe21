// internal/counties/counties.go
//
// The county universe: an immutable table loaded once from the embedded
// assets, plus the adjacency graph of land borders.
//
// Responsibilities:
//   - Parse county records and the single alias (Londonderry → Derry).
//   - Resolve guesses case-insensitively to a canonical county.
//   - Provide the deterministically ordered list used by daily selection.
//   - Answer adjacency queries (see adjacency.go).
package counties

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/robalobadob/countle/assets"
	"github.com/robalobadob/countle/internal/geo"
)

// MaxDistanceKm is an upper bound on the distance between any two counties
// (Antrim to Kerry is about 356 km).
const MaxDistanceKm = 360.0

var ErrUnknownCounty = errors.New("unknown county")

// County is an immutable county record.
type County struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Province string  `json:"province"`
	Fact     string  `json:"fact"`
}

// Point returns the county's coordinates.
func (c County) Point() geo.Point { return geo.Point{Lat: c.Lat, Lng: c.Lng} }

// Registry holds the county table and border graph. It is read-only after
// construction and safe for concurrent use.
type Registry struct {
	byKey     map[string]County // lowercased canonical name → county
	aliases   map[string]string // lowercased alias → canonical name
	ordered   []County          // canonical counties sorted by name
	neighbors map[string]map[string]struct{}
}

var (
	loadOnce sync.Once
	loaded   *Registry
	loadErr  error
)

// Load returns the registry built from the embedded assets. The assets are
// parsed once; later calls return the same registry.
func Load() (*Registry, error) {
	loadOnce.Do(func() {
		countyLines, err := assets.CountyLines()
		if err != nil {
			loadErr = fmt.Errorf("read counties: %w", err)
			return
		}
		borderLines, err := assets.BorderLines()
		if err != nil {
			loadErr = fmt.Errorf("read borders: %w", err)
			return
		}
		loaded, loadErr = Parse(countyLines, borderLines)
	})
	return loaded, loadErr
}

// MustLoad is Load for callers that cannot continue without the table.
func MustLoad() *Registry {
	r, err := Load()
	if err != nil {
		panic(err)
	}
	return r
}

// Parse builds a registry from county and border lines in the asset format:
//
//	Name|lat|lng|Province|Fact
//	Alias=Canonical
//	Name: Neighbour, Neighbour
func Parse(countyLines, borderLines []string) (*Registry, error) {
	r := &Registry{
		byKey:     make(map[string]County),
		aliases:   make(map[string]string),
		neighbors: make(map[string]map[string]struct{}),
	}

	var aliasLines []string
	for _, line := range countyLines {
		if strings.Contains(line, "=") && !strings.Contains(line, "|") {
			aliasLines = append(aliasLines, line)
			continue
		}
		c, err := parseCounty(line)
		if err != nil {
			return nil, err
		}
		key := normalize(c.Name)
		if _, dup := r.byKey[key]; dup {
			return nil, fmt.Errorf("duplicate county %q", c.Name)
		}
		r.byKey[key] = c
		r.ordered = append(r.ordered, c)
	}
	if len(r.ordered) == 0 {
		return nil, errors.New("counties: table is empty")
	}
	sort.Slice(r.ordered, func(i, j int) bool { return r.ordered[i].Name < r.ordered[j].Name })

	for _, line := range aliasLines {
		alias, canonical, _ := strings.Cut(line, "=")
		alias, canonical = strings.TrimSpace(alias), strings.TrimSpace(canonical)
		if _, ok := r.byKey[normalize(canonical)]; !ok {
			return nil, fmt.Errorf("alias %q: %w %q", alias, ErrUnknownCounty, canonical)
		}
		if _, clash := r.byKey[normalize(alias)]; clash || alias == "" {
			return nil, fmt.Errorf("alias %q clashes with a county name", alias)
		}
		r.aliases[normalize(alias)] = r.byKey[normalize(canonical)].Name
	}

	if err := r.parseBorders(borderLines); err != nil {
		return nil, err
	}
	return r, nil
}

func parseCounty(line string) (County, error) {
	parts := strings.Split(line, "|")
	if len(parts) != 5 {
		return County{}, fmt.Errorf("county line %q: want 5 fields, got %d", line, len(parts))
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return County{}, fmt.Errorf("county line %q: lat: %w", line, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return County{}, fmt.Errorf("county line %q: lng: %w", line, err)
	}
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return County{}, fmt.Errorf("county line %q: empty name", line)
	}
	return County{
		Name:     name,
		Lat:      lat,
		Lng:      lng,
		Province: strings.TrimSpace(parts[3]),
		Fact:     strings.TrimSpace(parts[4]),
	}, nil
}

// Lookup resolves a raw guess to its canonical county. Matching ignores case
// and surrounding whitespace; aliases resolve to their canonical record.
func (r *Registry) Lookup(name string) (County, bool) {
	key := normalize(name)
	if key == "" {
		return County{}, false
	}
	if canonical, ok := r.aliases[key]; ok {
		key = normalize(canonical)
	}
	c, ok := r.byKey[key]
	return c, ok
}

// All returns the canonical counties sorted by name. The slice is a copy.
func (r *Registry) All() []County {
	return append([]County(nil), r.ordered...)
}

// Names returns every guess-valid name, aliases included, sorted.
// This is the list an autocomplete widget offers.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.ordered)+len(r.aliases))
	for _, c := range r.ordered {
		out = append(out, c.Name)
	}
	for alias := range r.aliases {
		out = append(out, aliasDisplay(alias))
	}
	sort.Strings(out)
	return out
}

// Len is the number of canonical counties.
func (r *Registry) Len() int { return len(r.ordered) }

// At returns the i-th county of the ordered list.
func (r *Registry) At(i int) County { return r.ordered[i] }

// Random returns a uniformly chosen canonical county using crypto/rand, so
// every call draws fresh entropy.
func (r *Registry) Random() County {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(r.ordered))))
	if err != nil {
		return r.ordered[0]
	}
	return r.ordered[n.Int64()]
}

// Distance is the great-circle distance between two counties in kilometres.
func Distance(a, b County) float64 { return geo.Distance(a.Point(), b.Point()) }

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// aliasDisplay title-cases a stored alias key for display.
func aliasDisplay(key string) string {
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + key[1:]
}
