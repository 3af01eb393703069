// Package ogc implements the WMS, WMTS and TMS-shorthand HTTP surface of
// spec.md §6, dispatching requests into the compositing pipeline
// (internal/pipeline/*) and rendering the result through internal/codec.
package ogc

import (
	"encoding/xml"
	"fmt"
	"net/http"
)

// Kind is one of spec.md §7's error taxonomy entries. It names a kind of
// failure, not a Go error type: every Kind wraps into the same Exception.
type Kind string

const (
	MissingParameter         Kind = "MissingParameter"
	InvalidParameter         Kind = "InvalidParameter"
	VersionNegotiationFailed Kind = "VersionNegotiationFailed"
	InvalidUpdateSequence    Kind = "InvalidUpdateSequence"
	NoApplicableCode         Kind = "NoApplicableCode"
	InvalidFormat            Kind = "InvalidFormat"
	InvalidCRS               Kind = "InvalidCRS"
	LayerNotDefined          Kind = "LayerNotDefined"
	StyleNotDefined          Kind = "StyleNotDefined"
	LayerNotQueryable        Kind = "LayerNotQueryable"
	InvalidPoint             Kind = "InvalidPoint"
	MissingDimensionValue    Kind = "MissingDimensionValue"
	InvalidDimensionValue    Kind = "InvalidDimensionValue"
	OperationNotSupported    Kind = "OperationNotSupported"
	TileOutOfRange           Kind = "TileOutOfRange"
	NotFound                 Kind = "NotFound"
)

// Exception is a structured OGC service exception: a kind, the offending
// parameter ("locator"), and a human-readable message.
type Exception struct {
	Kind    Kind
	Locator string
	Message string
}

func (e *Exception) Error() string {
	if e.Locator != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Locator, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Except builds an *Exception, the constructor every handler in this
// package uses instead of fmt.Errorf so failures carry a Kind.
func Except(kind Kind, locator, format string, args ...any) *Exception {
	return &Exception{Kind: kind, Locator: locator, Message: fmt.Sprintf(format, args...)}
}

// StatusFor maps an error kind to the HTTP status spec.md §6 requires:
// 400 for invalid input, 404 for out-of-range tiles/missing resources,
// 501 for unsupported operations, 500 for everything else.
func StatusFor(kind Kind) int {
	switch kind {
	case MissingParameter, InvalidParameter, VersionNegotiationFailed,
		InvalidUpdateSequence, InvalidFormat, InvalidCRS, LayerNotDefined,
		StyleNotDefined, LayerNotQueryable, InvalidPoint,
		MissingDimensionValue, InvalidDimensionValue:
		return http.StatusBadRequest
	case TileOutOfRange, NotFound:
		return http.StatusNotFound
	case OperationNotSupported:
		return http.StatusNotImplemented
	case NoApplicableCode:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// asException converts any error into an *Exception, defaulting to
// NoApplicableCode for errors the pipeline didn't already classify.
func asException(err error) *Exception {
	if exc, ok := err.(*Exception); ok {
		return exc
	}
	return &Exception{Kind: NoApplicableCode, Message: err.Error()}
}

type wmsServiceExceptionReport struct {
	XMLName        xml.Name               `xml:"ServiceExceptionReport"`
	Version        string                 `xml:"version,attr"`
	ServiceException []wmsServiceException `xml:"ServiceException"`
}

type wmsServiceException struct {
	Code    string `xml:"code,attr"`
	Locator string `xml:"locator,attr,omitempty"`
	Message string `xml:",chardata"`
}

// WriteServiceExceptionReport renders a WMS 1.3.0 ServiceExceptionReport
// and writes it with the HTTP status matching the first exception.
func WriteServiceExceptionReport(w http.ResponseWriter, errs ...error) {
	if len(errs) == 0 {
		return
	}
	report := wmsServiceExceptionReport{Version: "1.3.0"}
	for _, err := range errs {
		exc := asException(err)
		report.ServiceException = append(report.ServiceException, wmsServiceException{
			Code: string(exc.Kind), Locator: exc.Locator, Message: exc.Message,
		})
	}
	status := StatusFor(asException(errs[0]).Kind)
	writeXML(w, status, report)
}

type owsExceptionReport struct {
	XMLName   xml.Name        `xml:"ows:ExceptionReport"`
	XMLNSOWS  string          `xml:"xmlns:ows,attr"`
	Version   string          `xml:"version,attr"`
	Exception []owsException  `xml:"ows:Exception"`
}

type owsException struct {
	ExceptionCode string   `xml:"exceptionCode,attr"`
	Locator       string   `xml:"locator,attr,omitempty"`
	ExceptionText []string `xml:"ows:ExceptionText"`
}

// WriteOWSExceptionReport renders a WMTS/OWS ExceptionReport.
func WriteOWSExceptionReport(w http.ResponseWriter, errs ...error) {
	if len(errs) == 0 {
		return
	}
	report := owsExceptionReport{
		XMLNSOWS: "http://www.opengis.net/ows/1.1",
		Version:  "1.0.0",
	}
	for _, err := range errs {
		exc := asException(err)
		report.Exception = append(report.Exception, owsException{
			ExceptionCode: string(exc.Kind), Locator: exc.Locator, ExceptionText: []string{exc.Message},
		})
	}
	status := StatusFor(asException(errs[0]).Kind)
	writeXML(w, status, report)
}

func writeXML(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, xml.Header)
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	_ = enc.Encode(v)
}
