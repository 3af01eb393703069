package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rok4/rok4go/internal/codec"
	"github.com/rok4/rok4go/internal/storage"
	"github.com/rok4/rok4go/internal/tms"
)

// levelXML is one <level> element: the TileMatrix it is built for and the
// storage it lives in. The original LevelXML additionally distinguishes multiple
// storage backends per level (filesystem tiles, Ceph, S3, Swift); this
// decode target carries all four and LoadPyramid picks whichever is
// populated, exactly as PyramidXML.cpp's per-level <FILE>/<CEPH>/<S3>/
// <SWIFT> branches do.
type levelXML struct {
	TileMatrix string `xml:"tileMatrix"`

	File  *fileStorageXML  `xml:"baseDir"`
	Ceph  *cephStorageXML  `xml:"cephContext"`
	S3    *s3StorageXML    `xml:"s3Context"`
	Swift *swiftStorageXML `xml:"swiftContext"`

	NoDataTile string `xml:"nodataTile"`
}

type fileStorageXML struct {
	Path string `xml:",chardata"`
}

type cephStorageXML struct {
	ClusterName string `xml:"clusterName"`
	UserName    string `xml:"userName"`
	ConfFile    string `xml:"confFile"`
	Pool        string `xml:"pool"`
}

type s3StorageXML struct {
	URL       string `xml:"url"`
	Key       string `xml:"key"`
	SecretKey string `xml:"secretKey"`
	Bucket    string `xml:"bucket"`
	UseSSL    bool   `xml:"useSSL"`
}

type swiftStorageXML struct {
	AuthURL string `xml:"authUrl"`
	User    string `xml:"user"`
	Passwd  string `xml:"passwd"`
	Account string `xml:"account"`
}

type pyramidXML struct {
	TileMatrixSet string `xml:"tileMatrixSet"`
	Format        string `xml:"format"`
	Photometric   string `xml:"photometric"`
	Channels      int    `xml:"channels"`
	NoDataValue   string `xml:"nodataValue"`
	Levels        []levelXML `xml:"level"`
}

// LoadPyramid reads a <Pyramid> XML document and binds it against the
// given TileMatrixSet, returning a ready-to-serve tms.Pyramid. Grounded on
// original_source/rok4/PyramidXML.cpp's constructor.
func LoadPyramid(path string, set *tms.TileMatrixSet) (*tms.Pyramid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading pyramid %s: %w", path, err)
	}
	var raw pyramidXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parsing pyramid %s: %w", path, err)
	}
	if raw.TileMatrixSet != set.Name {
		return nil, fmt.Errorf("config: pyramid %s references tile matrix set %q, loaded set is %q", path, raw.TileMatrixSet, set.Name)
	}
	if raw.Channels <= 0 {
		return nil, fmt.Errorf("config: pyramid %s: channels must be positive", path)
	}
	fmtID, ok := codec.ParseFormat(raw.Format)
	if !ok {
		return nil, fmt.Errorf("config: pyramid %s: unknown format %q", path, raw.Format)
	}
	pyrCodec, sampleFormat, err := codecAndSampleFormat(fmtID, raw.Format)
	if err != nil {
		return nil, fmt.Errorf("config: pyramid %s: %w", path, err)
	}

	var nodata []float64
	if raw.NoDataValue != "" {
		nodata, err = parseFloatList(raw.NoDataValue, raw.Channels)
		if err != nil {
			return nil, fmt.Errorf("config: pyramid %s: nodataValue: %w", path, err)
		}
	}

	baseDir := filepath.Dir(path)

	if len(raw.Levels) == 0 {
		return nil, fmt.Errorf("config: pyramid %s: no levels", path)
	}
	levels := make([]*tms.Level, 0, len(raw.Levels))
	for _, lvl := range raw.Levels {
		backend, err := backendFor(lvl, baseDir)
		if err != nil {
			return nil, fmt.Errorf("config: pyramid %s: level %q: %w", path, lvl.TileMatrix, err)
		}
		levels = append(levels, &tms.Level{
			TileMatrixID: lvl.TileMatrix,
			Backend:      backend,
			Codec:        pyrCodec,
			Format:       sampleFormat,
			Channels:     raw.Channels,
			NoData:       nodata,
		})
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return tms.NewPyramid(name, set, levels)
}

func codecAndSampleFormat(f codec.Format, raw string) (tms.Codec, tms.SampleFormat, error) {
	sample := tms.SampleUint8
	if strings.HasSuffix(raw, "FLOAT32") {
		sample = tms.SampleFloat32
	}
	switch f {
	case codec.FormatRaw:
		return tms.CodecRaw, sample, nil
	case codec.FormatJPEG:
		return tms.CodecJPEG, tms.SampleUint8, nil
	case codec.FormatPNG:
		return tms.CodecPNG, tms.SampleUint8, nil
	case codec.FormatLZW:
		return tms.CodecLZW, sample, nil
	case codec.FormatPackBits:
		return tms.CodecPackBits, sample, nil
	case codec.FormatZip:
		return tms.CodecZip, sample, nil
	}
	return 0, 0, fmt.Errorf("format %q has no on-disk tile codec (export-only format)", raw)
}

func parseFloatList(s string, want int) ([]float64, error) {
	fields := strings.Fields(s)
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		var v float64
		if _, err := fmt.Sscanf(f, "%g", &v); err != nil {
			return nil, fmt.Errorf("invalid value %q", f)
		}
		out = append(out, v)
	}
	if len(out) == 1 && want > 1 {
		full := make([]float64, want)
		for i := range full {
			full[i] = out[0]
		}
		return full, nil
	}
	return out, nil
}

func backendFor(lvl levelXML, baseDir string) (storage.Backend, error) {
	switch {
	case lvl.File != nil:
		dir := strings.TrimSpace(lvl.File.Path)
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(baseDir, dir)
		}
		return storage.NewFileBackend(dir), nil
	case lvl.Ceph != nil:
		c := lvl.Ceph
		return storage.NewCephBackend(c.ClusterName, c.UserName, c.ConfFile, c.Pool), nil
	case lvl.S3 != nil:
		s := lvl.S3
		return storage.NewS3Backend(storage.S3Config{
			URL: s.URL, Key: s.Key, SecretKey: s.SecretKey, Bucket: s.Bucket, UseSSL: s.UseSSL,
		})
	case lvl.Swift != nil:
		s := lvl.Swift
		return storage.NewSwiftBackend(s.AuthURL, s.User, s.Passwd, s.Account), nil
	}
	return nil, fmt.Errorf("no storage backend configured")
}
