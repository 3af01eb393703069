// Package config loads rok4d's XML configuration tree: the server-wide
// serverConf document, per-pyramid descriptors, and per-style palettes,
// grounded on original_source/rok4/ServerXML.cpp, PyramidXML.cpp and
// StyleXML.cpp. Go's encoding/xml replaces the original's TinyXML-driven
// hand walk of the DOM, but the element names and default-value behavior
// (missing optional element => documented default, not an error) follow
// the originals element for element.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
)

// LogOutput mirrors ServerXML.cpp's logOutput enum.
type LogOutput int

const (
	RollingFile LogOutput = iota
	StandardOutputStreamForErrors
	StaticFile
)

// LogLevel mirrors ServerXML.cpp's logLevel enum.
type LogLevel int

const (
	Fatal LogLevel = iota
	Error
	Warn
	Info
	Debug
)

const (
	defaultLogFilePrefix = "rok4d"
	defaultLogFilePeriod = 86400
	defaultNbThread      = 4
	defaultNbProcess     = 1
	maxNbProcess         = 32
	defaultTimeForProcess = 60
	maxTimeForProcess    = 3600
)

// Proxy is the outbound HTTP proxy rok4d uses for upstream GetFeatureInfo
// cascades, mirroring ServerXML.cpp's ProxyConf struct.
type Proxy struct {
	Name string `xml:"proxyName"`
	Port string `xml:"proxyPort"`
	NoProxy string `xml:"noProxy"`
}

// serverXML is the raw decode target for <serverConf>; Server is the
// resolved form with defaults applied, matching ServerXML's constructor
// pattern of "parse raw text, validate/convert, fall back to a constant".
type serverXML struct {
	LogOutput     string `xml:"logOutput"`
	LogFilePrefix string `xml:"logFilePrefix"`
	LogFilePeriod *int   `xml:"logFilePeriod"`
	LogLevel      string `xml:"logLevel"`
	NbThread      *int   `xml:"nbThread"`
	NbProcess     *int   `xml:"nbProcess"`
	TimeForProcess *int  `xml:"timeForProcess"`
	WMTSSupport   *bool  `xml:"WMTSSupport"`
	TMSSupport    *bool  `xml:"TMSSupport"`
	WMSSupport    *bool  `xml:"WMSSupport"`
	Proxy         Proxy  `xml:"proxy"`
}

// Server is rok4d's top-level runtime configuration.
type Server struct {
	LogOutput      LogOutput
	LogFilePrefix  string
	LogFilePeriod  int
	LogLevel       LogLevel
	NbThread       int
	NbProcess      int
	TimeForProcess int
	SupportWMTS    bool
	SupportTMS     bool
	SupportWMS     bool
	Proxy          Proxy
}

// LoadServer reads and validates a serverConf XML document.
func LoadServer(path string) (*Server, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading server conf %s: %w", path, err)
	}
	var raw serverXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parsing server conf %s: %w", path, err)
	}

	s := &Server{
		LogOutput:      RollingFile,
		LogFilePrefix:  defaultLogFilePrefix,
		LogFilePeriod:  defaultLogFilePeriod,
		LogLevel:       Info,
		NbThread:       defaultNbThread,
		NbProcess:      defaultNbProcess,
		TimeForProcess: defaultTimeForProcess,
		SupportWMTS:    true,
		SupportTMS:     true,
		SupportWMS:     true,
		Proxy:          raw.Proxy,
	}

	if raw.LogOutput != "" {
		switch raw.LogOutput {
		case "rolling_file":
			s.LogOutput = RollingFile
		case "standard_output_stream_for_errors":
			s.LogOutput = StandardOutputStreamForErrors
		case "static_file":
			s.LogOutput = StaticFile
		default:
			return nil, fmt.Errorf("config: %s: unknown logOutput %q", path, raw.LogOutput)
		}
	}
	if raw.LogFilePrefix != "" {
		s.LogFilePrefix = raw.LogFilePrefix
	}
	if raw.LogFilePeriod != nil {
		s.LogFilePeriod = *raw.LogFilePeriod
	}
	if raw.LogLevel != "" {
		lvl, ok := parseLogLevel(raw.LogLevel)
		if !ok {
			return nil, fmt.Errorf("config: %s: unknown logLevel %q", path, raw.LogLevel)
		}
		s.LogLevel = lvl
	}
	if raw.NbThread != nil {
		s.NbThread = *raw.NbThread
	}
	if raw.NbProcess != nil {
		s.NbProcess = *raw.NbProcess
		if s.NbProcess > maxNbProcess {
			s.NbProcess = maxNbProcess
		}
	}
	if raw.TimeForProcess != nil {
		s.TimeForProcess = *raw.TimeForProcess
		if s.TimeForProcess > maxTimeForProcess {
			s.TimeForProcess = maxTimeForProcess
		}
	}
	if raw.WMTSSupport != nil {
		s.SupportWMTS = *raw.WMTSSupport
	}
	if raw.TMSSupport != nil {
		s.SupportTMS = *raw.TMSSupport
	}
	if raw.WMSSupport != nil {
		s.SupportWMS = *raw.WMSSupport
	}

	return s, nil
}

func parseLogLevel(s string) (LogLevel, bool) {
	switch s {
	case "fatal":
		return Fatal, true
	case "error":
		return Error, true
	case "warn":
		return Warn, true
	case "info":
		return Info, true
	case "debug":
		return Debug, true
	}
	return 0, false
}
