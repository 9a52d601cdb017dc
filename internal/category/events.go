package category

import (
	"fmt"

	"rpgm-translator/internal/document"
)

// commandList is one event command list located in a document.
type commandList struct {
	owner  uint32
	prefix string
	list   []any
}

func extractLists(lists []commandList, sourceFile string) []document.ExtractedUnit {
	var units []document.ExtractedUnit
	for _, cl := range lists {
		units = append(units, document.ExtractCommands(cl.list, cl.owner, sourceFile, cl.prefix)...)
	}
	return units
}

// applyLists sends every unit addressed at one of lists to
// document.ReconstructCommands and returns the units that address something
// else.
func applyLists(lists []commandList, units []document.TranslatedUnit, report *document.Report) []document.TranslatedUnit {
	index := make(map[string]*commandList, len(lists))
	for i := range lists {
		index[lists[i].prefix] = &lists[i]
	}

	batches := make(map[string][]document.TranslatedUnit)
	var rest []document.TranslatedUnit
	for _, u := range units {
		prefix, ok := listPrefix(u.Path)
		if !ok {
			rest = append(rest, u)
			continue
		}
		cl, ok := index[prefix]
		if !ok {
			report.Skip(u, fmt.Sprintf("no command list at %s", prefix))
			continue
		}
		if u.RecordID != cl.owner {
			report.Skip(u, fmt.Sprintf("command list %s belongs to record %d", prefix, cl.owner))
			continue
		}
		batches[prefix] = append(batches[prefix], u)
	}

	for i := range lists {
		cl := &lists[i]
		if batch := batches[cl.prefix]; len(batch) > 0 {
			document.ReconstructCommands(cl.list, cl.owner, batch, cl.prefix, report)
		}
	}
	return rest
}

// listPrefix returns the canonical command list prefix of a unit path, e.g.
// "[2].pages[0].list" for "[2].pages[0].list[5].parameters[0]".
func listPrefix(path string) (string, bool) {
	p, err := document.ParsePath(path)
	if err != nil {
		return "", false
	}
	for k := len(p) - 1; k >= 0; k-- {
		if p[k].Field == "list" && len(p[k].Indices) > 0 {
			return p[:k].Append(document.Segment{Field: "list"}).String(), true
		}
	}
	return "", false
}

// applyScoped writes document-scoped units (record id 0) at their paths
// relative to the document root.
func applyScoped(root any, units []document.TranslatedUnit, report *document.Report) {
	for _, u := range units {
		if u.RecordID != document.NoRecord {
			report.Skip(u, fmt.Sprintf("unexpected record id %d for document-scoped text", u.RecordID))
			continue
		}
		p, err := document.ParsePath(u.Path)
		if err != nil {
			report.Skip(u, err.Error())
			continue
		}
		if err := document.ReplaceString(root, p, u.Text()); err != nil {
			report.Skip(u, err.Error())
			continue
		}
		report.Applied++
	}
}

// pageLists collects pages[p].list under base for an event or troop.
func pageLists(obj map[string]any, owner uint32, base string) []commandList {
	pages, _ := obj["pages"].([]any)
	var lists []commandList
	for p, pg := range pages {
		page, ok := pg.(map[string]any)
		if !ok {
			continue
		}
		list, ok := page["list"].([]any)
		if !ok {
			continue
		}
		lists = append(lists, commandList{
			owner:  owner,
			prefix: fmt.Sprintf("%spages[%d].list", base, p),
			list:   list,
		})
	}
	return lists
}

type commonEventsHandler struct{}

func commonEventLists(records []any) []commandList {
	var lists []commandList
	for i, r := range records {
		rec, ok := r.(map[string]any)
		if !ok {
			continue
		}
		id, ok := nameSpec.ID(rec)
		if !ok || id == document.NoRecord {
			continue
		}
		if list, ok := rec["list"].([]any); ok {
			lists = append(lists, commandList{owner: id, prefix: fmt.Sprintf("[%d].list", i), list: list})
		}
	}
	return lists
}

func (commonEventsHandler) Extract(doc any, sourceFile string) ([]document.ExtractedUnit, error) {
	records, ok := doc.([]any)
	if !ok {
		return nil, document.ShapeError(sourceFile, "array", doc)
	}
	units := document.ExtractRecords(records, sourceFile, nameSpec)
	return append(units, extractLists(commonEventLists(records), sourceFile)...), nil
}

func (commonEventsHandler) Apply(doc any, units []document.TranslatedUnit, report *document.Report) error {
	records, ok := doc.([]any)
	if !ok {
		return document.ShapeError(report.SourceFile, "array", doc)
	}
	rest := applyLists(commonEventLists(records), units, report)
	document.ApplyByIndex(records, rest, nameSpec, report)
	return nil
}

type troopsHandler struct{}

func troopLists(records []any) []commandList {
	var lists []commandList
	for i, r := range records {
		rec, ok := r.(map[string]any)
		if !ok {
			continue
		}
		id, ok := nameSpec.ID(rec)
		if !ok || id == document.NoRecord {
			continue
		}
		lists = append(lists, pageLists(rec, id, fmt.Sprintf("[%d].", i))...)
	}
	return lists
}

func (troopsHandler) Extract(doc any, sourceFile string) ([]document.ExtractedUnit, error) {
	records, ok := doc.([]any)
	if !ok {
		return nil, document.ShapeError(sourceFile, "array", doc)
	}
	units := document.ExtractRecords(records, sourceFile, nameSpec)
	return append(units, extractLists(troopLists(records), sourceFile)...), nil
}

func (troopsHandler) Apply(doc any, units []document.TranslatedUnit, report *document.Report) error {
	records, ok := doc.([]any)
	if !ok {
		return document.ShapeError(report.SourceFile, "array", doc)
	}
	rest := applyLists(troopLists(records), units, report)
	document.ApplyByIndex(records, rest, nameSpec, report)
	return nil
}

// mapHandler serves MapNNN.json: the display name plus every event page.
type mapHandler struct{}

func mapLists(root map[string]any) []commandList {
	events, _ := root["events"].([]any)
	var lists []commandList
	for e, ev := range events {
		event, ok := ev.(map[string]any)
		if !ok {
			continue
		}
		id, ok := document.IntID(event["id"])
		if !ok || id == document.NoRecord {
			continue
		}
		lists = append(lists, pageLists(event, id, fmt.Sprintf("events[%d].", e))...)
	}
	return lists
}

func (mapHandler) Extract(doc any, sourceFile string) ([]document.ExtractedUnit, error) {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, document.ShapeError(sourceFile, "object", doc)
	}
	var units []document.ExtractedUnit
	if name, ok := root["displayName"].(string); ok && !document.IsBlank(name) {
		units = append(units, document.ExtractedUnit{
			RecordID:   document.NoRecord,
			Text:       name,
			SourceFile: sourceFile,
			Path:       "displayName",
			FieldType:  TypeName,
		})
	}
	return append(units, extractLists(mapLists(root), sourceFile)...), nil
}

func (mapHandler) Apply(doc any, units []document.TranslatedUnit, report *document.Report) error {
	root, ok := doc.(map[string]any)
	if !ok {
		return document.ShapeError(report.SourceFile, "object", doc)
	}
	rest := applyLists(mapLists(root), units, report)
	applyScoped(root, rest, report)
	return nil
}
