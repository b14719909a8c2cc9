package diag

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/fatih/color"

	"github.com/sunholo/tlc/internal/ast"
)

// Diagnostic is a single uniform error/warning/info record (spec §4/§7).
type Diagnostic struct {
	Code     string         `json:"code"`
	Severity Severity       `json:"severity"`
	Phase    Phase          `json:"phase"`
	Message  string         `json:"message"`
	Span     *ast.Span      `json:"span,omitempty"`
	File     string         `json:"file,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

func (d *Diagnostic) Error() string {
	if d.Span != nil {
		return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Span.Line, d.Span.Column, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// New constructs a Diagnostic at the given code/severity.
func New(code string, severity Severity, file string, span *ast.Span, message string, args ...any) *Diagnostic {
	info, _ := Lookup(code)
	return &Diagnostic{
		Code:     code,
		Severity: severity,
		Phase:    info.Phase,
		Message:  fmt.Sprintf(message, args...),
		Span:     span,
		File:     file,
	}
}

// Errorf is shorthand for New(code, SeverityError, ...).
func Errorf(code, file string, span *ast.Span, message string, args ...any) *Diagnostic {
	return New(code, SeverityError, file, span, message, args...)
}

// Handler is the shared, concurrency-safe diagnostics surface (spec §3
// Ownership & lifecycle: "interior mutability — callers push records,
// readers read snapshots"; spec §5: guarded by a mutex, writes are short).
type Handler struct {
	mu   sync.Mutex
	recs []*Diagnostic
}

// NewHandler creates an empty Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Push appends a diagnostic. Safe for concurrent use across modules being
// parsed/checked in parallel (spec §5).
func (h *Handler) Push(d *Diagnostic) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recs = append(h.recs, d)
}

// Snapshot returns a copy of all diagnostics recorded so far, in the order
// they were pushed. Within a module this is file order because every
// stage walks the AST in source order (spec §5 Ordering guarantees).
func (h *Handler) Snapshot() []*Diagnostic {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Diagnostic, len(h.recs))
	copy(out, h.recs)
	return out
}

// HasErrors reports whether any SeverityError diagnostic has been pushed.
func (h *Handler) HasErrors() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, d := range h.recs {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ForFile returns only the diagnostics attributed to file, in order.
func (h *Handler) ForFile(file string) []*Diagnostic {
	all := h.Snapshot()
	out := make([]*Diagnostic, 0, len(all))
	for _, d := range all {
		if d.File == file {
			out = append(out, d)
		}
	}
	return out
}

// SortBySpan orders diagnostics deterministically by file, then line/col.
// Useful for CLI/LSP consumers (out of scope) that want stable output.
func SortBySpan(ds []*Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.File != b.File {
			return a.File < b.File
		}
		al, bl := -1, -1
		if a.Span != nil {
			al = a.Span.Line
		}
		if b.Span != nil {
			bl = b.Span.Line
		}
		return al < bl
	})
}

// ToJSON renders a Diagnostic as JSON, matching the teacher's
// ToJSON(compact bool) idiom (internal/errors/report.go).
func (d *Diagnostic) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(d)
	} else {
		data, err = json.MarshalIndent(d, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var (
	colorError   = color.New(color.FgRed, color.Bold).SprintFunc()
	colorWarning = color.New(color.FgYellow, color.Bold).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorDim     = color.New(color.Faint).SprintFunc()
)

// Render formats d for a terminal consumer, optionally with ANSI color.
// Printing diagnostics to a terminal is itself a CLI concern (spec §1);
// this is offered as a pure string-building helper the CLI can call, not
// something the core ever calls on its own.
func Render(d *Diagnostic, useColor bool) string {
	label := d.Severity.String()
	loc := d.File
	if d.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", d.File, d.Span.Line, d.Span.Column)
	}
	if !useColor {
		return fmt.Sprintf("%s: %s [%s] %s", loc, label, d.Code, d.Message)
	}
	switch d.Severity {
	case SeverityError:
		label = colorError(label)
	case SeverityWarning:
		label = colorWarning(label)
	default:
		label = colorInfo(label)
	}
	return fmt.Sprintf("%s: %s [%s] %s", colorDim(loc), label, d.Code, d.Message)
}
