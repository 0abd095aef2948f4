// Package mapping models index mapping trees and derives display fields
// from them. A tree is parsed once at the backend boundary into an explicit
// recursive shape whose children are ordered slices, so the backend's key
// order survives all later steps.
package mapping

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Structural types are recursed into rather than emitted as leaf fields.
const (
	TypeObject = "object"
	TypeNested = "nested"

	TypeKeyword = "keyword"
	TypeText    = "text"
)

// Field describes one leaf field of an index mapping.
type Field struct {
	// Label is the fully qualified dotted path from the mapping root.
	Label string `json:"label"`
	// Type is the leaf type name, never object or nested.
	Type string `json:"type"`
	// Path carries the node's declared path attribute, if any.
	Path string `json:"path,omitempty"`
}

// Node is a single node of a mapping tree. A node may carry a leaf type,
// multi-field children, object children, or any combination of the three.
type Node struct {
	Type       string
	Path       string
	Fields     Tree
	Properties Tree
}

// Entry pairs a field name with its node.
type Entry struct {
	Name string
	Node Node
}

// Tree is one level of a mapping tree, in the order the backend returned
// the keys.
type Tree []Entry

// IndexMappings is the parsed mapping tree of one concrete index.
type IndexMappings struct {
	Index      string
	Properties Tree
}

// ParseMappings parses a get-mapping response body into per-index trees.
// The body maps each resolved index name to {"mappings":{"properties":…}};
// both the index order and the field order within each tree follow the
// document.
func ParseMappings(body []byte) ([]IndexMappings, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("mapping response is not valid JSON")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("mapping response is not a JSON object")
	}
	var out []IndexMappings
	doc.ForEach(func(index, value gjson.Result) bool {
		out = append(out, IndexMappings{
			Index:      index.String(),
			Properties: parseTree(value.Get("mappings.properties")),
		})
		return true
	})
	return out, nil
}

func parseTree(res gjson.Result) Tree {
	if !res.IsObject() {
		return nil
	}
	var tree Tree
	res.ForEach(func(name, value gjson.Result) bool {
		node := Node{
			Type: value.Get("type").String(),
			Path: value.Get("path").String(),
		}
		if fields := value.Get("fields"); fields.IsObject() {
			node.Fields = parseTree(fields)
		}
		if props := value.Get("properties"); props.IsObject() {
			node.Properties = parseTree(props)
		}
		tree = append(tree, Entry{Name: name.String(), Node: node})
		return true
	})
	return tree
}
