package codegen

import (
	"strings"

	"github.com/sunholo/tlc/internal/ast"
	"github.com/sunholo/tlc/internal/interner"
	"github.com/sunholo/tlc/internal/optimize"
)

// Target selects which Lua dialect's quirks code generation targets:
// bitwise operators and integer division differ across 5.1-5.4, ported
// from codegen's LuaTarget/dialect strategy split.
type Target int

const (
	Lua51 Target = iota
	Lua52
	Lua53
	Lua54
)

func (t Target) supportsNativeBitwise() bool { return t == Lua53 || t == Lua54 }
func (t Target) supportsFloorDivide() bool   { return t == Lua53 || t == Lua54 }

// Mode selects how cross-module references are lowered: Require emits
// plain `require(...)` calls per module; Bundle combines every module
// into one file behind a `__require` loader keyed by ModuleID.
type Mode int

const (
	ModeRequire Mode = iota
	ModeBundle
)

// OutputFormat controls whitespace in the generated text.
type OutputFormat int

const (
	Readable OutputFormat = iota
	Compact
	Minified
)

// Generator lowers a single module's ast.Program to Lua source text.
type Generator struct {
	in       *interner.Interner
	target   Target
	mode     Mode
	moduleID string
	format   OutputFormat
	level    optimize.Level

	sourceMap *SourceMapBuilder
	reachable map[string]bool // non-nil enables tree shaking in bundle mode
	importMap map[string]string

	sb     strings.Builder
	indent int
	// exports collects top-level exported names as they're emitted, for a
	// bundle-mode loader to expose as the module's return table.
	exports []string
	// emittedDecoratorRuntime guards the built-in decorator runtime hooks
	// (spec §4.2.7) so they're written at most once per generated module.
	emittedDecoratorRuntime bool
}

// Builder configures and constructs a Generator, mirroring
// CodeGeneratorBuilder in builder.rs.
type Builder struct {
	g *Generator
}

// NewBuilder creates a Builder with the required interner; every other
// setting defaults (Lua 5.4, Require mode, Readable format, no source map).
func NewBuilder(in *interner.Interner) *Builder {
	return &Builder{g: &Generator{
		in:     in,
		target: Lua54,
		mode:   ModeRequire,
		format: Readable,
		level:  optimize.O0,
	}}
}

func (b *Builder) Target(t Target) *Builder {
	b.g.target = t
	return b
}

func (b *Builder) SourceMap(sourceFile string) *Builder {
	b.g.sourceMap = NewSourceMapBuilder(sourceFile)
	return b
}

func (b *Builder) RequireMode() *Builder {
	b.g.mode = ModeRequire
	return b
}

func (b *Builder) BundleMode(moduleID string, importMap map[string]string) *Builder {
	b.g.mode = ModeBundle
	b.g.moduleID = moduleID
	b.g.importMap = importMap
	return b
}

func (b *Builder) OptimizationLevel(level optimize.Level) *Builder {
	b.g.level = level
	return b
}

func (b *Builder) OutputFormat(f OutputFormat) *Builder {
	b.g.format = f
	return b
}

// WithTreeShaking restricts emitted top-level exports to the given set;
// only meaningful in Bundle mode.
func (b *Builder) WithTreeShaking(reachable map[string]bool) *Builder {
	b.g.reachable = reachable
	return b
}

func (b *Builder) Build() *Generator { return b.g }

// Generate lowers prog to Lua source text, returning the generated code
// and (if a source map was configured) the accumulated SourceMap.
func (g *Generator) Generate(prog *ast.Program) (string, *SourceMap) {
	for _, s := range prog.Stmts {
		g.genStmt(s)
	}
	if len(g.exports) > 0 {
		g.emitReturn()
	}
	var sm *SourceMap
	if g.sourceMap != nil {
		sm = g.sourceMap.Build()
	}
	return g.sb.String(), sm
}

// emitReturn emits the module's export table. In both Require and Bundle
// mode a TL module compiles to a Lua chunk that returns a table of its
// exports; Bundle mode's loader (built by the registry that combines
// modules, not by a single Generator) is what calls __require and indexes
// into this table.
func (g *Generator) emitReturn() {
	kept := make([]string, 0, len(g.exports))
	for _, name := range g.exports {
		if g.exportReachable(name) {
			kept = append(kept, name)
		}
	}
	g.writeIndent()
	g.write("return {")
	for i, name := range kept {
		if i > 0 {
			g.write(", ")
		}
		g.write(name)
		g.write(" = ")
		g.write(name)
	}
	g.writeln("}")
}

// exportReachable reports whether the top-level export named name survives tree
// shaking (always true when tree shaking is disabled).
func (g *Generator) exportReachable(name string) bool {
	if g.reachable == nil {
		return true
	}
	return g.reachable[name]
}

func (g *Generator) name(id interner.ID) string { return g.in.MustLookup(id) }

// --- low-level text emission, respecting OutputFormat ---

func (g *Generator) write(s string) {
	g.sb.WriteString(s)
	if g.sourceMap != nil {
		g.sourceMap.Advance(s)
	}
}

func (g *Generator) writeln(s string) {
	g.write(s)
	if g.format != Minified {
		g.write("\n")
	} else {
		g.write(" ")
	}
}

func (g *Generator) writeIndent() {
	if g.format == Readable {
		g.write(strings.Repeat("  ", g.indent))
	}
}

func (g *Generator) indentIn()  { g.indent++ }
func (g *Generator) indentOut() {
	if g.indent > 0 {
		g.indent--
	}
}

// mark records a source-map mapping at the current generated position for
// span, naming the identifier if given.
func (g *Generator) mark(span ast.Span, name string) {
	if g.sourceMap != nil {
		g.sourceMap.AddMapping(span, name)
	}
}
