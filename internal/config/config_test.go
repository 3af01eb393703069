package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rok4/rok4go/internal/tms"
)

func fakeSet() *tms.TileMatrixSet {
	return &tms.TileMatrixSet{
		Name: "PM",
		CRS:  "EPSG:3857",
		Levels: []tms.TileMatrix{
			{ID: "0", Resolution: 1, TileWidth: 256, TileHeight: 256, MatrixW: 1, MatrixH: 1},
		},
	}
}

func TestLoadServerDefaultsWhenElementsMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.xml")
	if err := os.WriteFile(path, []byte(`<serverConf></serverConf>`), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadServer(path)
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if s.LogFilePrefix != defaultLogFilePrefix {
		t.Fatalf("expected default log file prefix, got %q", s.LogFilePrefix)
	}
	if !s.SupportWMTS || !s.SupportTMS || !s.SupportWMS {
		t.Fatal("expected all protocols to default to supported")
	}
	if s.NbProcess != defaultNbProcess {
		t.Fatalf("expected default nbProcess, got %d", s.NbProcess)
	}
}

func TestLoadServerOverridesAndClampsNbProcess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.xml")
	xmlDoc := `<serverConf>
		<logLevel>debug</logLevel>
		<nbProcess>999</nbProcess>
		<WMSSupport>false</WMSSupport>
	</serverConf>`
	if err := os.WriteFile(path, []byte(xmlDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadServer(path)
	if err != nil {
		t.Fatalf("LoadServer: %v", err)
	}
	if s.LogLevel != Debug {
		t.Fatalf("expected debug log level, got %v", s.LogLevel)
	}
	if s.NbProcess != maxNbProcess {
		t.Fatalf("expected nbProcess clamped to %d, got %d", maxNbProcess, s.NbProcess)
	}
	if s.SupportWMS {
		t.Fatal("expected WMS support disabled")
	}
}

func TestLoadServerRejectsUnknownLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.xml")
	if err := os.WriteFile(path, []byte(`<serverConf><logLevel>verbose</logLevel></serverConf>`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadServer(path); err == nil {
		t.Fatal("expected error for unknown logLevel")
	}
}

func TestLoadTileMatrixSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tms.xml")
	xmlDoc := `<TileMatrixSet>
		<Identifier>PM</Identifier>
		<SupportedCRS>EPSG:3857</SupportedCRS>
		<TileMatrix>
			<Identifier>0</Identifier>
			<Resolution>156543.033928</Resolution>
			<TopLeftCorner>-20037508.3428 20037508.3428</TopLeftCorner>
			<TileWidth>256</TileWidth>
			<TileHeight>256</TileHeight>
			<MatrixWidth>1</MatrixWidth>
			<MatrixHeight>1</MatrixHeight>
		</TileMatrix>
		<TileMatrix>
			<Identifier>1</Identifier>
			<Resolution>78271.516964</Resolution>
			<TopLeftCorner>-20037508.3428 20037508.3428</TopLeftCorner>
			<TileWidth>256</TileWidth>
			<TileHeight>256</TileHeight>
			<MatrixWidth>2</MatrixWidth>
			<MatrixHeight>2</MatrixHeight>
		</TileMatrix>
	</TileMatrixSet>`
	if err := os.WriteFile(path, []byte(xmlDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	set, err := LoadTileMatrixSet(path)
	if err != nil {
		t.Fatalf("LoadTileMatrixSet: %v", err)
	}
	if set.Name != "PM" || len(set.Levels) != 2 {
		t.Fatalf("unexpected set: %+v", set)
	}
	m, ok := set.ByID("1")
	if !ok || m.MatrixW != 2 {
		t.Fatalf("expected level 1 with matrix width 2, got %+v ok=%v", m, ok)
	}
}

func TestLoadPyramidBuildsFileBackedLevels(t *testing.T) {
	dir := t.TempDir()
	tmsPath := filepath.Join(dir, "tms.xml")
	tmsDoc := `<TileMatrixSet>
		<Identifier>PM</Identifier>
		<SupportedCRS>EPSG:3857</SupportedCRS>
		<TileMatrix>
			<Identifier>0</Identifier>
			<Resolution>156543.033928</Resolution>
			<TopLeftCorner>-20037508.3428 20037508.3428</TopLeftCorner>
			<TileWidth>256</TileWidth>
			<TileHeight>256</TileHeight>
			<MatrixWidth>1</MatrixWidth>
			<MatrixHeight>1</MatrixHeight>
		</TileMatrix>
	</TileMatrixSet>`
	if err := os.WriteFile(tmsPath, []byte(tmsDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	set, err := LoadTileMatrixSet(tmsPath)
	if err != nil {
		t.Fatalf("LoadTileMatrixSet: %v", err)
	}

	tilesDir := filepath.Join(dir, "tiles")
	if err := os.MkdirAll(tilesDir, 0o755); err != nil {
		t.Fatal(err)
	}
	pyrPath := filepath.Join(dir, "ortho.xml")
	pyrDoc := `<Pyramid>
		<tileMatrixSet>PM</tileMatrixSet>
		<format>TIFF_JPG_INT8</format>
		<channels>3</channels>
		<level>
			<tileMatrix>0</tileMatrix>
			<baseDir>tiles</baseDir>
		</level>
	</Pyramid>`
	if err := os.WriteFile(pyrPath, []byte(pyrDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	pyr, err := LoadPyramid(pyrPath, set)
	if err != nil {
		t.Fatalf("LoadPyramid: %v", err)
	}
	if pyr.Channels != 3 {
		t.Fatalf("expected 3 channels, got %d", pyr.Channels)
	}
	lvl, ok := pyr.Level("0")
	if !ok {
		t.Fatal("expected level 0")
	}
	if lvl.Backend.Kind() != "file" {
		t.Fatalf("expected file backend, got %q", lvl.Backend.Kind())
	}
}

func TestLoadPyramidRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	set := fakeSet()
	pyrPath := filepath.Join(dir, "bogus.xml")
	pyrDoc := `<Pyramid>
		<tileMatrixSet>PM</tileMatrixSet>
		<format>NOT_A_FORMAT</format>
		<channels>1</channels>
		<level><tileMatrix>0</tileMatrix><baseDir>.</baseDir></level>
	</Pyramid>`
	if err := os.WriteFile(pyrPath, []byte(pyrDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPyramid(pyrPath, set); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLoadStyleParsesPaletteAndHillshade(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "elevation.xml")
	xmlDoc := `<Style>
		<Identifier>elevation</Identifier>
		<Title>Elevation</Title>
		<palette rgbContinuous="true">
			<colour value="0"><red>0</red><green>0</green><blue>255</blue></colour>
			<colour value="1000"><red>255</red><green>0</green><blue>0</blue></colour>
		</palette>
		<estompage angle="315" exaggeration="2.5"/>
	</Style>`
	if err := os.WriteFile(path, []byte(xmlDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := LoadStyle(path)
	if err != nil {
		t.Fatalf("LoadStyle: %v", err)
	}
	if st.Palette == nil || len(st.Palette.Stops) != 2 {
		t.Fatalf("expected 2 palette stops, got %+v", st.Palette)
	}
	if st.Hillshade == nil || st.Hillshade.Angle != 315 || st.Hillshade.Exaggeration != 2.5 {
		t.Fatalf("unexpected hillshade config: %+v", st.Hillshade)
	}
}

func TestLoadEnvReadsROK4Variables(t *testing.T) {
	t.Setenv("ROK4_S3_URL", "s3.example.com")
	t.Setenv("ROK4_S3_USESSL", "true")
	t.Setenv("ROK4_REDIS_HOST", "redis.example.com")
	t.Setenv("ROK4_REDIS_PORT", "6380")

	env := LoadEnv()
	if env.S3URL != "s3.example.com" || !env.S3UseSSL {
		t.Fatalf("unexpected S3 env: %+v", env)
	}
	if env.RedisAddr() != "redis.example.com:6380" {
		t.Fatalf("expected RedisAddr=redis.example.com:6380, got %q", env.RedisAddr())
	}
}
