package ogc

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rok4/rok4go/internal/alias"
	"github.com/rok4/rok4go/internal/cache"
	"github.com/rok4/rok4go/internal/config"
	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/obs"
)

// Service is the http.Handler serving WMS, WMTS and the TMS shorthand
// (spec.md §6) against a fixed set of configured layers.
type Service struct {
	Server      *config.Server
	Layers      map[string]*config.Layer
	Transformer *georef.CoordinateTransformer
	Cache       *cache.LRU
	Alias       alias.Manager
	Metrics     *obs.Metrics
	Logger      *zap.Logger
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	operation, status := s.route(w, r)
	if s.Metrics != nil {
		s.Metrics.RequestsTotal.WithLabelValues(operation, fmt.Sprint(status)).Inc()
		s.Metrics.RequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// route dispatches by path and SERVICE/REQUEST parameters, returning the
// resolved operation name and HTTP status for metrics labeling.
func (s *Service) route(w http.ResponseWriter, r *http.Request) (operation string, status int) {
	path := strings.Trim(r.URL.Path, "/")
	if segs := strings.Split(path, "/"); len(segs) == 5 && strings.Contains(segs[4], ".") {
		return "TMS", s.serveTMS(w, r, segs)
	}

	p := newParams(r.URL.Query())
	service := strings.ToUpper(p.get("SERVICE"))
	req := strings.ToUpper(p.get("REQUEST"))

	switch service {
	case "WMS":
		return "WMS." + orUnknown(req), s.serveWMS(w, r, p, req)
	case "WMTS":
		return "WMTS." + orUnknown(req), s.serveWMTS(w, r, p, req)
	default:
		exc := Except(MissingParameter, "SERVICE", "SERVICE must be WMS or WMTS")
		WriteServiceExceptionReport(w, exc)
		return "unknown", StatusFor(exc.Kind)
	}
}

// resolveLayer looks up a layer by its configured identifier, falling
// back to the alias manager for published short names.
func (s *Service) resolveLayer(ctx context.Context, name string) (*config.Layer, *Exception) {
	if l, ok := s.Layers[name]; ok {
		return l, nil
	}
	if s.Alias != nil {
		if canonical, ok, err := s.Alias.Resolve(ctx, name); err == nil && ok {
			if l, ok := s.Layers[canonical]; ok {
				return l, nil
			}
		}
	}
	return nil, Except(LayerNotDefined, "LAYERS", "layer %q is not defined", name)
}

func orUnknown(req string) string {
	if req == "" {
		return "unknown"
	}
	return req
}

func (s *Service) resolveStyle(layer *config.Layer, name string) (*config.Style, *Exception) {
	if name == "" || name == "default" {
		name = layer.DefaultStyle
	}
	if name == "" {
		return nil, nil
	}
	st, ok := layer.Styles[name]
	if !ok {
		return nil, Except(StyleNotDefined, "STYLES", "style %q is not defined for this layer", name)
	}
	return st, nil
}
