package geo

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/btaeng/trivia-map/internal/model"
)

//go:embed data/countries.geojson
var embeddedFS embed.FS

// UnknownName is used for features that carry no usable name property.
const UnknownName = "Unknown location"

// Property keys checked in order for the display name and region label.
// The upper-case variants are the Natural Earth admin-0 column names.
var (
	nameKeys   = []string{"NAME", "name", "ADMIN", "admin"}
	regionKeys = []string{"SUBREGION", "subregion", "REGION_UN", "region"}
)

var ErrUnsupportedGeometry = errors.New("unsupported geometry type")

// Dataset is the boundary collection loaded at startup. It is never
// modified after Load returns, so it may be shared between goroutines.
type Dataset struct {
	features []model.GeoFeature
	shapes   []shape
	byName   map[string]int
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string          `json:"type"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// Load parses a GeoJSON FeatureCollection.
func Load(r io.Reader) (*Dataset, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decoding geojson: %w", err)
	}
	if !strings.EqualFold(fc.Type, "FeatureCollection") {
		return nil, fmt.Errorf("expected FeatureCollection, got %q", fc.Type)
	}

	d := &Dataset{byName: make(map[string]int)}
	for i, f := range fc.Features {
		if err := d.add(f); err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
	}
	return d, nil
}

// LoadFile reads a single GeoJSON file, or every *.json / *.geojson file in
// a directory when path names one.
func LoadFile(path string) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return loadDir(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// LoadEmbedded returns the dataset bundled with the binary.
func LoadEmbedded() (*Dataset, error) {
	f, err := embeddedFS.Open("data/countries.geojson")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// loadDir merges one-country-per-file collections into a single dataset.
func loadDir(dir string) (*Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	d := &Dataset{byName: make(map[string]int)}
	for _, ent := range entries {
		name := strings.ToLower(ent.Name())
		if ent.IsDir() || !(strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".geojson")) {
			continue
		}
		part, err := LoadFile(filepath.Join(dir, ent.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ent.Name(), err)
		}
		for i, f := range part.features {
			d.append(f, part.shapes[i])
		}
	}
	return d, nil
}

func (d *Dataset) add(f feature) error {
	gf := model.GeoFeature{
		Name:     firstString(f.Properties, nameKeys),
		Region:   firstString(f.Properties, regionKeys),
		Geometry: f.Geometry,
	}
	if gf.Name == "" {
		gf.Name = UnknownName
	}

	sh, err := parseShape(f.Geometry)
	if err != nil {
		return fmt.Errorf("%s: %w", gf.Name, err)
	}
	d.append(gf, sh)
	return nil
}

func (d *Dataset) append(f model.GeoFeature, sh shape) {
	if _, dup := d.byName[f.Name]; !dup {
		d.byName[f.Name] = len(d.features)
	}
	d.features = append(d.features, f)
	d.shapes = append(d.shapes, sh)
}

// Len returns the number of features.
func (d *Dataset) Len() int { return len(d.features) }

// Features returns every feature in load order.
func (d *Dataset) Features() []model.GeoFeature {
	out := make([]model.GeoFeature, len(d.features))
	copy(out, d.features)
	return out
}

// Regions returns the distinct non-empty region labels, sorted.
func (d *Dataset) Regions() []string {
	seen := make(map[string]bool)
	regions := []string{}
	for _, f := range d.features {
		if f.Region == "" || seen[f.Region] {
			continue
		}
		seen[f.Region] = true
		regions = append(regions, f.Region)
	}
	sort.Strings(regions)
	return regions
}

// RegionCounts returns how many features carry each region label.
func (d *Dataset) RegionCounts() map[string]int {
	counts := make(map[string]int)
	for _, f := range d.features {
		if f.Region != "" {
			counts[f.Region]++
		}
	}
	return counts
}

// InRegion returns the features whose region label equals region exactly.
// No region selected means nothing is shown.
func (d *Dataset) InRegion(region string) []model.GeoFeature {
	if region == "" {
		return nil
	}
	var out []model.GeoFeature
	for _, f := range d.features {
		if f.Region == region {
			out = append(out, f)
		}
	}
	return out
}

// Lookup resolves a user-typed country name. It tries an exact match, then a
// case-insensitive one, then the closest name by edit distance.
func (d *Dataset) Lookup(name string) (model.GeoFeature, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.GeoFeature{}, false
	}
	if i, ok := d.byName[name]; ok {
		return d.features[i], true
	}
	for _, f := range d.features {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}

	query := strings.ToLower(name)
	best, bestDist := -1, maxLookupDistance(query)+1
	for i, f := range d.features {
		dist := levenshtein.ComputeDistance(query, strings.ToLower(f.Name))
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return model.GeoFeature{}, false
	}
	return d.features[best], true
}

// maxLookupDistance allows roughly one typo per four characters.
func maxLookupDistance(s string) int {
	if n := len(s) / 4; n > 2 {
		return n
	}
	return 2
}

// Locate returns the feature whose boundary contains the point.
func (d *Dataset) Locate(lat, lon float64) (model.GeoFeature, bool) {
	p := pointFromDegrees(lat, lon)
	for i, sh := range d.shapes {
		if sh.contains(p) {
			return d.features[i], true
		}
	}
	return model.GeoFeature{}, false
}

// FeatureCollection renders features back to GeoJSON for the map.
func FeatureCollection(features []model.GeoFeature) map[string]any {
	out := make([]map[string]any, 0, len(features))
	for _, f := range features {
		out = append(out, map[string]any{
			"type": "Feature",
			"properties": map[string]string{
				"name":   f.Name,
				"region": f.Region,
			},
			"geometry": f.Geometry,
		})
	}
	return map[string]any{
		"type":     "FeatureCollection",
		"features": out,
	}
}

func firstString(props map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := props[k].(string); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}
