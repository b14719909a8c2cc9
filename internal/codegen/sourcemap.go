// Package codegen lowers a type-checked, optimized ast.Program to Lua
// source text, grounded on
// original_source/crates/typedlua-core/src/codegen/*.rs.
package codegen

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/sunholo/tlc/internal/ast"
)

// mapping is one generated->source position pair, mirroring sourcemap.rs's
// internal Mapping struct.
type mapping struct {
	genLine, genCol       int
	sourceIndex           int
	sourceLine, sourceCol int
	nameIndex             int
	hasName               bool
}

// SourceMapBuilder accumulates (generated position -> source position)
// mappings while code is written, and encodes them as a Source Map v3
// "mappings" string (VLQ base64), ported from sourcemap.rs.
type SourceMapBuilder struct {
	file          string
	sourceRoot    string
	sources       []string
	sourcesByPath map[string]int
	sourcesConten []*string
	names         []string
	namesByValue  map[string]int
	mappings      []mapping
	genLine       int
	genCol        int
}

// NewSourceMapBuilder creates a builder tracking a single source file.
func NewSourceMapBuilder(sourceFile string) *SourceMapBuilder {
	return &SourceMapBuilder{
		sources:       []string{sourceFile},
		sourcesByPath: map[string]int{sourceFile: 0},
		namesByValue:  map[string]int{},
	}
}

// NewMultiSourceMapBuilder creates a builder tracking several source files,
// for bundle-mode generation.
func NewMultiSourceMapBuilder(sourceFiles []string) *SourceMapBuilder {
	b := &SourceMapBuilder{sourcesByPath: map[string]int{}, namesByValue: map[string]int{}}
	for _, f := range sourceFiles {
		b.AddSource(f)
	}
	return b
}

// AddSource registers a source file, returning its (deduplicated) index.
func (b *SourceMapBuilder) AddSource(sourceFile string) int {
	if idx, ok := b.sourcesByPath[sourceFile]; ok {
		return idx
	}
	b.sources = append(b.sources, sourceFile)
	idx := len(b.sources) - 1
	b.sourcesByPath[sourceFile] = idx
	return idx
}

func (b *SourceMapBuilder) SetFile(file string)             { b.file = file }
func (b *SourceMapBuilder) SetSourceRoot(sourceRoot string)  { b.sourceRoot = sourceRoot }
func (b *SourceMapBuilder) AddSourceContent(content string) {
	b.sourcesConten = append(b.sourcesConten, &content)
}

// AddMapping records a mapping from the current generated position to a
// position in source 0, optionally naming the original identifier.
func (b *SourceMapBuilder) AddMapping(span ast.Span, name string) {
	b.AddMappingWithSource(span, 0, name)
}

// AddMappingWithSource is AddMapping with an explicit source index, for
// bundle mode where mappings span several original files.
func (b *SourceMapBuilder) AddMappingWithSource(span ast.Span, sourceIndex int, name string) {
	m := mapping{
		genLine:     b.genLine,
		genCol:      b.genCol,
		sourceIndex: sourceIndex,
		sourceLine:  span.Line,
		sourceCol:   span.Column,
	}
	if name != "" {
		idx, ok := b.namesByValue[name]
		if !ok {
			b.names = append(b.names, name)
			idx = len(b.names) - 1
			b.namesByValue[name] = idx
		}
		m.nameIndex = idx
		m.hasName = true
	}
	b.mappings = append(b.mappings, m)
}

// Advance moves the generated-position cursor past text that was just
// written, tracking line/column like a terminal would.
func (b *SourceMapBuilder) Advance(text string) {
	for _, ch := range text {
		if ch == '\n' {
			b.genLine++
			b.genCol = 0
		} else {
			b.genCol++
		}
	}
}

// SourceMap is the JSON-serializable Source Map v3 document.
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []*string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names,omitempty"`
	Mappings       string   `json:"mappings"`
}

// Build finalizes the accumulated mappings into a SourceMap.
func (b *SourceMapBuilder) Build() *SourceMap {
	return &SourceMap{
		Version:        3,
		File:           b.file,
		SourceRoot:     b.sourceRoot,
		Sources:        b.sources,
		SourcesContent: b.sourcesConten,
		Names:          b.names,
		Mappings:       b.encodeMappings(),
	}
}

func (b *SourceMapBuilder) encodeMappings() string {
	var out []byte
	prevGenLine, prevGenCol := 0, 0
	prevSourceIndex, prevSourceLine, prevSourceCol := 0, 0, 0
	prevNameIndex := 0

	for _, m := range b.mappings {
		for prevGenLine < m.genLine {
			out = append(out, ';')
			prevGenLine++
			prevGenCol = 0
		}
		if len(out) > 0 && out[len(out)-1] != ';' {
			out = append(out, ',')
		}

		out = append(out, encodeVLQ(m.genCol-prevGenCol)...)
		prevGenCol = m.genCol

		out = append(out, encodeVLQ(m.sourceIndex-prevSourceIndex)...)
		prevSourceIndex = m.sourceIndex

		out = append(out, encodeVLQ(m.sourceLine-prevSourceLine)...)
		prevSourceLine = m.sourceLine

		out = append(out, encodeVLQ(m.sourceCol-prevSourceCol)...)
		prevSourceCol = m.sourceCol

		if m.hasName {
			out = append(out, encodeVLQ(m.nameIndex-prevNameIndex)...)
			prevNameIndex = m.nameIndex
		}
	}
	return string(out)
}

const vlqBase64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// encodeVLQ base64-VLQ encodes a signed delta, matching
// SourceMapBuilder::encode_vlq in sourcemap.rs exactly (sign in the low
// bit, 5 data bits per digit, high bit of each digit is the continuation
// flag).
func encodeVLQ(value int) string {
	vlq := value << 1
	if value < 0 {
		vlq = (-value << 1) | 1
	}
	var out []byte
	for {
		digit := vlq & 0x1F
		vlq >>= 5
		if vlq > 0 {
			digit |= 0x20
		}
		out = append(out, vlqBase64Chars[digit])
		if vlq == 0 {
			break
		}
	}
	return string(out)
}

// ToJSON serializes the source map as pretty-printed JSON.
func (m *SourceMap) ToJSON() (string, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToDataURI returns the source map as an inline base64 data URI.
func (m *SourceMap) ToDataURI() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	encoded := base64.StdEncoding.EncodeToString(b)
	return fmt.Sprintf("data:application/json;charset=utf-8;base64,%s", encoded), nil
}

// ToComment returns the `--# sourceMappingURL=...` trailer Lua tooling
// reads to locate the inline source map.
func (m *SourceMap) ToComment() (string, error) {
	uri, err := m.ToDataURI()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("--# sourceMappingURL=%s", uri), nil
}
