package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/thoughtstream/auditweb/internal/domain"
	"github.com/thoughtstream/auditweb/internal/domain/audit"
)

const rootPath = "/"

// Transform converts a raw JSON document into tree nodes.
// An object yields one root node; an array yields one node per element;
// a scalar yields a single leaf. Empty containers and null yield no nodes.
func Transform(raw json.RawMessage) (Nodes, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedDocument, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", domain.ErrMalformedDocument)
	}

	switch t := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		if len(t) == 0 {
			return nil, nil
		}
		return Nodes{{
			Title:    rootPath,
			Key:      rootPath,
			Folder:   true,
			Expanded: true,
			Children: objectChildren(t, ""),
		}}, nil
	case []any:
		if len(t) == 0 {
			return nil, nil
		}
		return arrayChildren(t, ""), nil
	default:
		return Nodes{{Title: scalarString(t), Key: rootPath}}, nil
	}
}

func objectChildren(obj map[string]any, parent string) []Node {
	names := make([]string, 0, len(obj))
	for k := range obj {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]Node, 0, len(names))
	for _, name := range names {
		out = append(out, build(name, parent+audit.PathSeparator+audit.SanitizeSegment(name), obj[name]))
	}
	return out
}

func arrayChildren(arr []any, parent string) []Node {
	out := make([]Node, 0, len(arr))
	for i, el := range arr {
		idx := strconv.Itoa(i)
		out = append(out, build(idx, parent+audit.PathSeparator+idx, el))
	}
	return out
}

func build(name, key string, v any) Node {
	switch t := v.(type) {
	case map[string]any:
		return Node{Title: name, Key: key, Folder: true, Children: objectChildren(t, key)}
	case []any:
		return Node{Title: name, Key: key, Folder: true, Children: arrayChildren(t, key)}
	default:
		return Node{Title: name + ": " + scalarString(t), Key: key}
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
