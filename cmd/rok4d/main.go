// Command rok4d serves WMS, WMTS and TMS tile requests over HTTP against
// a tree of pyramid/layer/style XML documents, per spec.md §6.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rok4/rok4go/internal/alias"
	"github.com/rok4/rok4go/internal/cache"
	"github.com/rok4/rok4go/internal/config"
	"github.com/rok4/rok4go/internal/georef"
	"github.com/rok4/rok4go/internal/obs"
	"github.com/rok4/rok4go/internal/ogc"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		confDir       string
		layerDir      string
		tmsDir        string
		pyramidDir    string
		styleDir      string
		addr          string
		tileCacheSize int
		development   bool
		showVersion   bool
	)

	flag.StringVar(&confDir, "conf", "/etc/rok4d", "Directory holding server.xml")
	flag.StringVar(&layerDir, "layers", "", "Directory of layer XML documents (default: <conf>/layers)")
	flag.StringVar(&tmsDir, "tilematrixsets", "", "Directory of TileMatrixSet XML documents (default: <conf>/tileMatrixSet)")
	flag.StringVar(&pyramidDir, "pyramids", "", "Directory of pyramid XML documents (default: <conf>/pyramids)")
	flag.StringVar(&styleDir, "styles", "", "Directory of style XML documents (default: <conf>/styles)")
	flag.StringVar(&addr, "listen", ":8080", "HTTP listen address")
	flag.IntVar(&tileCacheSize, "tile-cache-size", 256, "LRU capacity for encoded WMTS tile responses")
	flag.BoolVar(&development, "development", false, "Use human-readable logging instead of JSON")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("rok4d %s (commit %s)\n", version, commit)
		os.Exit(0)
	}

	if layerDir == "" {
		layerDir = filepath.Join(confDir, "layers")
	}
	if tmsDir == "" {
		tmsDir = filepath.Join(confDir, "tileMatrixSet")
	}
	if pyramidDir == "" {
		pyramidDir = filepath.Join(confDir, "pyramids")
	}
	if styleDir == "" {
		styleDir = filepath.Join(confDir, "styles")
	}

	logger, err := obs.NewLogger(development)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer logger.Sync()

	env := config.LoadEnv()
	if env.ProjLib != "" {
		os.Setenv("PROJ_LIB", env.ProjLib)
	}

	server, err := config.LoadServer(filepath.Join(confDir, "server.xml"))
	if err != nil {
		logger.Sugar().Fatalf("loading server.xml: %v", err)
	}

	layers, err := loadLayers(layerDir, tmsDir, pyramidDir, styleDir)
	if err != nil {
		logger.Sugar().Fatalf("loading layers: %v", err)
	}
	logger.Sugar().Infof("loaded %d layer(s) from %s", len(layers), layerDir)

	var aliasManager alias.Manager
	if addr := env.RedisAddr(); addr != "" {
		aliasManager = alias.NewRedisAliasManager(addr, env.RedisPasswd, 0, "")
	} else {
		aliasManager = alias.NewStaticManager()
	}

	metrics := obs.NewMetrics(prometheus.DefaultRegisterer)

	svc := &ogc.Service{
		Server:      server,
		Layers:      layers,
		Transformer: georef.NewCoordinateTransformer(),
		Cache:       cache.New(tileCacheSize),
		Alias:       aliasManager,
		Metrics:     metrics,
		Logger:      logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", svc)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("rok4d listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Sugar().Fatalf("server stopped: %v", err)
	}
}

// loadLayers reads every *.xml document in layerDir into a Layer, keyed
// by its configured Identifier.
func loadLayers(layerDir, tmsDir, pyramidDir, styleDir string) (map[string]*config.Layer, error) {
	entries, err := os.ReadDir(layerDir)
	if err != nil {
		return nil, fmt.Errorf("reading layer directory %s: %w", layerDir, err)
	}
	layers := make(map[string]*config.Layer)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".xml" {
			continue
		}
		l, err := config.LoadLayer(filepath.Join(layerDir, entry.Name()), tmsDir, pyramidDir, styleDir)
		if err != nil {
			return nil, fmt.Errorf("loading layer %s: %w", entry.Name(), err)
		}
		layers[l.Identifier] = l
	}
	return layers, nil
}
