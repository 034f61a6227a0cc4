package geo

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// WKT renders g as well-known text.
func WKT(g geom.T) (string, error) {
	if g == nil {
		return "", eris.New("geo: nil geometry")
	}
	s, err := wkt.Marshal(g)
	if err != nil {
		return "", eris.Wrap(err, "geo: encode wkt")
	}
	return s, nil
}
