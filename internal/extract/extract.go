// Package extract locates draw rows inside heterogeneous provider payloads
// and normalizes them into canonical records.
package extract

import (
	"fmt"
	"strings"

	"github.com/titanous/json5"
)

// Default container key-paths probed in order. The empty path means the
// payload itself is the row list.
var defaultContainerPaths = []string{
	"content.list",
	"content.rows",
	"data.list",
	"data.rows",
	"result.list",
	"list",
	"rows",
	"items",
	"",
}

// Total-count hints probed in order. The provider has been observed to move
// this field around between envelope revisions.
var defaultTotalPaths = []string{
	"content.totalSize",
	"content.total",
	"data.total",
	"totalCount",
	"total",
}

// Extractor probes a fixed, ordered list of container key-paths and returns
// the first non-empty row list. A miss is a signal, not an error.
type Extractor struct {
	containerPaths []string
	totalPaths     []string
}

// NewExtractor builds an Extractor. Empty slices fall back to the defaults.
func NewExtractor(containerPaths, totalPaths []string) *Extractor {
	if len(containerPaths) == 0 {
		containerPaths = defaultContainerPaths
	}
	if len(totalPaths) == 0 {
		totalPaths = defaultTotalPaths
	}
	return &Extractor{containerPaths: containerPaths, totalPaths: totalPaths}
}

// DecodePayload decodes a response body tolerantly. The provider emits
// sloppy JSON often enough (trailing commas, unquoted keys) that strict
// decoding would misclassify usable payloads as misses.
func DecodePayload(data []byte) (any, error) {
	var payload any
	if err := json5.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return payload, nil
}

// ExtractRows decodes one response body and returns the row list plus the
// total-count hint. Undecodable bodies are a miss, not an error.
func (e *Extractor) ExtractRows(body []byte) ([]any, int, bool) {
	payload, err := DecodePayload(body)
	if err != nil {
		return nil, 0, false
	}
	rows := e.Rows(payload)
	hint, has := e.TotalCount(payload)
	return rows, hint, has
}

// Rows returns the first ordered, non-empty row list found under the
// configured key-paths, or nil when no candidate matches.
func (e *Extractor) Rows(payload any) []any {
	for _, path := range e.containerPaths {
		node := walkPath(payload, path)
		if rows, ok := node.([]any); ok && len(rows) > 0 {
			return rows
		}
	}
	return nil
}

// TotalCount returns the provider's total-row hint when the payload carries
// one. Zero or negative hints are ignored: they are as likely to be schema
// drift as real counts.
func (e *Extractor) TotalCount(payload any) (int, bool) {
	for _, path := range e.totalPaths {
		node := walkPath(payload, path)
		if n, ok := asInt(node); ok && n > 0 {
			return n, true
		}
	}
	return 0, false
}

func walkPath(payload any, path string) any {
	if path == "" {
		return payload
	}
	node := payload
	for _, seg := range strings.Split(path, ".") {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node, ok = obj[seg]
		if !ok {
			return nil
		}
	}
	return node
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case string:
		tokens := digitTokens(n)
		if len(tokens) == 1 {
			return tokens[0], true
		}
	}
	return 0, false
}
