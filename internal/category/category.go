// Package category maps RPG Maker data files to the extraction and
// reconstruction rules for their layout.
package category

import (
	"path/filepath"
	"regexp"
	"strings"

	"rpgm-translator/internal/document"
)

// Category identifies the layout of one data file.
type Category int

const (
	Unknown Category = iota
	Actors
	Armors
	Classes
	CommonEvents
	Enemies
	Items
	MapInfos
	Map
	Skills
	States
	System
	Troops
	Weapons
)

var names = map[Category]string{
	Unknown:      "Unknown",
	Actors:       "Actors",
	Armors:       "Armors",
	Classes:      "Classes",
	CommonEvents: "CommonEvents",
	Enemies:      "Enemies",
	Items:        "Items",
	MapInfos:     "MapInfos",
	Map:          "Map",
	Skills:       "Skills",
	States:       "States",
	System:       "System",
	Troops:       "Troops",
	Weapons:      "Weapons",
}

func (c Category) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return names[Unknown]
}

var mapFilePattern = regexp.MustCompile(`^Map\d{3,}$`)

// Detect derives the category from a file name such as "Actors.json" or
// "data/Map012.json". Files that are not recognised are Unknown.
func Detect(filename string) Category {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	if !strings.EqualFold(ext, ".json") {
		return Unknown
	}
	stem := strings.TrimSuffix(base, ext)
	if mapFilePattern.MatchString(stem) {
		return Map
	}
	for c, n := range names {
		if c != Unknown && c != Map && n == stem {
			return c
		}
	}
	return Unknown
}

// Handler extracts units from, and applies units to, one category of
// parsed document.
type Handler interface {
	Extract(doc any, sourceFile string) ([]document.ExtractedUnit, error)
	// Apply mutates doc in place. Errors are reserved for documents of the
	// wrong shape; unit-level failures go to report.
	Apply(doc any, units []document.TranslatedUnit, report *document.Report) error
}

var handlers = map[Category]Handler{
	Actors:       recordHandler{spec: actorSpec},
	Armors:       recordHandler{spec: equipmentSpec},
	Weapons:      recordHandler{spec: equipmentSpec},
	Items:        recordHandler{spec: equipmentSpec},
	Skills:       recordHandler{spec: skillSpec},
	States:       recordHandler{spec: stateSpec},
	Classes:      recordHandler{spec: nameSpec},
	Enemies:      recordHandler{spec: nameSpec},
	MapInfos:     recordHandler{spec: nameSpec, byIndex: true},
	CommonEvents: commonEventsHandler{},
	Troops:       troopsHandler{},
	Map:          mapHandler{},
	System:       systemHandler{},
}

// Handler returns the rules for c. Unknown categories get a handler that
// extracts nothing and changes nothing.
func (c Category) Handler() Handler {
	if h, ok := handlers[c]; ok {
		return h
	}
	return noopHandler{}
}

type noopHandler struct{}

func (noopHandler) Extract(any, string) ([]document.ExtractedUnit, error) { return nil, nil }

func (noopHandler) Apply(any, []document.TranslatedUnit, *document.Report) error { return nil }
