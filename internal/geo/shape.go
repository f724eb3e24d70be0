package geo

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang/geo/s2"
)

// polygon is one outer loop plus its holes.
type polygon struct {
	outer *s2.Loop
	holes []*s2.Loop
}

// shape is the spherical form of a feature's Polygon or MultiPolygon.
type shape struct {
	polys []polygon
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

func parseShape(raw json.RawMessage) (shape, error) {
	var g geometry
	if err := json.Unmarshal(raw, &g); err != nil {
		return shape{}, fmt.Errorf("decoding geometry: %w", err)
	}

	var rings [][][][]float64
	switch strings.ToLower(g.Type) {
	case "polygon":
		var poly [][][]float64
		if err := json.Unmarshal(g.Coordinates, &poly); err != nil {
			return shape{}, fmt.Errorf("decoding polygon: %w", err)
		}
		rings = [][][][]float64{poly}
	case "multipolygon":
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return shape{}, fmt.Errorf("decoding multipolygon: %w", err)
		}
	default:
		return shape{}, fmt.Errorf("%w: %q", ErrUnsupportedGeometry, g.Type)
	}

	var sh shape
	for _, poly := range rings {
		if len(poly) == 0 {
			continue
		}
		outer := loopFromRing(poly[0])
		if outer == nil {
			continue
		}
		p := polygon{outer: outer}
		for _, hole := range poly[1:] {
			if l := loopFromRing(hole); l != nil {
				p.holes = append(p.holes, l)
			}
		}
		sh.polys = append(sh.polys, p)
	}
	return sh, nil
}

// loopFromRing converts a GeoJSON ring of [lon, lat] pairs. The closing
// vertex is dropped and the loop normalized, so rings wound either way
// enclose the smaller area. Rings with fewer than three distinct vertices
// yield nil.
func loopFromRing(ring [][]float64) *s2.Loop {
	pts := make([]s2.Point, 0, len(ring))
	for _, c := range ring {
		if len(c) < 2 {
			continue
		}
		pts = append(pts, pointFromDegrees(c[1], c[0]))
	}
	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	if len(pts) < 3 {
		return nil
	}
	l := s2.LoopFromPoints(pts)
	l.Normalize()
	return l
}

func pointFromDegrees(lat, lon float64) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
}

func (s shape) contains(p s2.Point) bool {
	for _, poly := range s.polys {
		if !poly.outer.RectBound().ContainsPoint(p) || !poly.outer.ContainsPoint(p) {
			continue
		}
		inHole := false
		for _, h := range poly.holes {
			if h.ContainsPoint(p) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}
