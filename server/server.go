// Package server publishes the generated treatment calendar over HTTP so
// calendar apps can subscribe to it. The surface is deliberately read-only:
// edits go through the planner, never over WebDAV, so the write methods are
// absent on purpose.
package server

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/beevik/etree"

	"github.com/terencehorsman/ChemoCare/internal/xml"
	"github.com/terencehorsman/ChemoCare/planner"
	"github.com/terencehorsman/ChemoCare/storage"
)

const (
	headerContentType = "Content-Type"
	headerDAV         = "DAV"
	headerAllow       = "Allow"

	mimeTypeCalendar = "text/calendar; charset=utf-8"
	mimeTypeXML      = "application/xml; charset=utf-8"

	davCapabilities = "1, calendar-access"
	allowedMethods  = "OPTIONS, PROPFIND, GET"

	calendarFile = "calendar.ics"
)

// Config configures a publishing server.
type Config struct {
	// BaseURI is the path prefix the calendar is served under, e.g. "/caldav/".
	BaseURI string
	// CalendarName is the display name embedded in the export and the
	// PROPFIND displayname property.
	CalendarName string
	// MonthsAhead controls the export window; <= 0 uses the engine default.
	MonthsAhead int
	Logger      *slog.Logger
}

// Server is an http.Handler serving the calendar collection.
type Server struct {
	planner      *planner.Planner
	baseURI      string
	calendarName string
	monthsAhead  int
	logger       *slog.Logger
	handlers     map[string]http.HandlerFunc
}

// New creates a publishing server over the given planner.
func New(p *planner.Planner, cfg Config) (*Server, error) {
	if p == nil {
		return nil, fmt.Errorf("planner is required")
	}
	baseURI := cfg.BaseURI
	if !strings.HasPrefix(baseURI, "/") {
		baseURI = "/" + baseURI
	}
	if !strings.HasSuffix(baseURI, "/") {
		baseURI = baseURI + "/"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		planner:      p,
		baseURI:      baseURI,
		calendarName: cfg.CalendarName,
		monthsAhead:  cfg.MonthsAhead,
		logger:       logger,
	}
	s.handlers = map[string]http.HandlerFunc{
		"OPTIONS":  s.handleOptions,
		"PROPFIND": s.handlePropfind,
		"GET":      s.handleGet,
		"HEAD":     s.handleGet,
	}
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler, ok := s.handlers[r.Method]
	if !ok {
		w.Header().Set(headerAllow, allowedMethods)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	handler(w, r)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(headerDAV, davCapabilities)
	w.Header().Set(headerAllow, allowedMethods)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, s.baseURI)
	if path != "" && path != calendarFile {
		http.NotFound(w, r)
		return
	}

	text, err := s.planner.ExportICS(r.Context(), s.calendarName, s.monthsAhead)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "no plan configured", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("export failed", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set(headerContentType, mimeTypeCalendar)
	if r.Method == "HEAD" {
		return
	}
	_, _ = io.WriteString(w, text)
}

func (s *Server) handlePropfind(w http.ResponseWriter, r *http.Request) {
	var doc *etree.Document
	if r.Body != nil {
		body := etree.NewDocument()
		if _, err := body.ReadFrom(r.Body); err == nil {
			doc = body
		}
	}

	var propfind xml.PropfindRequest
	if err := propfind.Parse(doc); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	props := propfind.Prop
	if propfind.AllProp {
		props = []string{xml.TagResourcetype, xml.TagDisplayname, xml.TagGetContentType}
	}

	var found, notFound []xml.Property
	for _, prop := range props {
		switch prop {
		case xml.TagResourcetype:
			found = append(found, xml.Property{
				Name: xml.TagResourcetype,
				Children: []xml.Property{
					{Name: xml.TagCollection},
					{Name: "C:" + xml.TagCalendar},
				},
			})
		case xml.TagDisplayname:
			found = append(found, xml.Property{Name: xml.TagDisplayname, Value: s.calendarName})
		case xml.TagGetContentType:
			found = append(found, xml.Property{Name: xml.TagGetContentType, Value: mimeTypeCalendar})
		case xml.TagGetCTag:
			ctag, err := s.ctag(r)
			if err != nil {
				notFound = append(notFound, xml.Property{Name: xml.TagGetCTag})
				continue
			}
			found = append(found, xml.Property{Name: xml.TagGetCTag, Value: ctag})
		default:
			notFound = append(notFound, xml.Property{Name: prop})
		}
	}

	resp := xml.Response{Href: s.baseURI}
	if len(found) > 0 {
		resp.PropStats = append(resp.PropStats, xml.PropStat{Props: found, Status: xml.StatusOK})
	}
	if len(notFound) > 0 {
		resp.PropStats = append(resp.PropStats, xml.PropStat{Props: notFound, Status: xml.StatusNotFound})
	}

	multistatus := xml.MultistatusResponse{Responses: []xml.Response{resp}}
	w.Header().Set(headerContentType, mimeTypeXML)
	w.WriteHeader(http.StatusMultiStatus)
	_, _ = multistatus.ToXML().WriteTo(w)
}

// ctag hashes the stored plan and overrides so subscribed clients can detect
// content changes without downloading the calendar. The export itself is not
// hashed: its DTSTAMP changes on every render.
func (s *Server) ctag(r *http.Request) (string, error) {
	plan, overrides, err := s.planner.Snapshot(r.Context())
	if err != nil {
		return "", err
	}
	planData, err := storage.EncodePlan(plan)
	if err != nil {
		return "", err
	}
	overrideData, err := storage.EncodeOverrides(overrides)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(append(planData, overrideData...))
	return hex.EncodeToString(sum[:]), nil
}
