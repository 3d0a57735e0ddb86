package ginja

import (
	"strings"

	"github.com/juju/errors"
)

// Environment owns a set of parsed templates, the variable mapping they
// render against, and the error log accumulated while building or rendering
// them — grounded on the teacher's pongo2.go TemplateSet, generalized to the
// explicit reference-counted variable mapping spec.md §6 describes ("the
// variable environment is itself a mapping value").
type Environment struct {
	opts      Options
	templates map[string]*Template
	vars      *Value
	errs      []error

	// renderingName names the template the in-flight Render call started
	// from, used by the evaluator to attribute errors that have no token of
	// their own (an undefined template name, an inheritance cycle).
	renderingName string
}

// NewEnvironment builds an Environment with DefaultOptions.
func NewEnvironment() *Environment {
	return NewEnvironmentWithOptions(DefaultOptions())
}

// NewEnvironmentWithOptions builds an Environment with the given Options.
func NewEnvironmentWithOptions(opts Options) *Environment {
	SetDebug(opts.Debug)
	return &Environment{
		opts:      opts,
		templates: make(map[string]*Template),
		vars:      NewMapping(),
	}
}

// AddTemplate parses source under name and registers it if parsing produced
// no errors. It reports success so callers can short-circuit a batch load
// (spec.md §6 "Directory loader"); either way, any parse errors are
// accumulated and retrievable via CheckErrors.
func (e *Environment) AddTemplate(name, source string) bool {
	tmpl, errs := ParseTemplate(name, source)
	if len(errs) > 0 {
		e.errs = append(e.errs, errs...)
		return false
	}
	e.templates[name] = tmpl
	return true
}

// CheckErrors returns every error accumulated since the Environment was
// created, across template loading and rendering.
func (e *Environment) CheckErrors() []error {
	return e.errs
}

// SetVar binds name to value in the render-time variable mapping, taking a
// reference to it.
func (e *Environment) SetVar(name string, value *Value) {
	if old := e.vars.MapSet(name, value); old != nil {
		old.Unref()
	}
}

// GetVar looks up name without adjusting any reference count (mirrors
// Value.MapGet).
func (e *Environment) GetVar(name string) *Value {
	return e.vars.MapGet(name)
}

// Vars returns the mapping value backing the Environment's variables,
// letting a caller build nested structures directly with the Value API.
func (e *Environment) Vars() *Value {
	return e.vars
}

// Render resolves name's extends chain and evaluates it, returning the
// rendered text. Errors recorded while evaluating blocks are all
// accumulated onto the Environment; the returned error (built with
// juju/errors) gives their count and the first of them. A failure to
// resolve the chain itself is accumulated and returned as is.
func (e *Environment) Render(name string) (string, error) {
	e.renderingName = name
	ev := &evaluator{env: e}
	var out strings.Builder
	if err := ev.renderTemplate(name, nil, 0, &out); err != nil {
		e.errs = append(e.errs, err)
		return "", err
	}
	if len(ev.localErrs) > 0 {
		e.errs = append(e.errs, ev.localErrs...)
		return out.String(), errors.Errorf("%d error(s) while rendering %q: %s", len(ev.localErrs), name, ev.localErrs[0])
	}
	return out.String(), nil
}

// Destroy releases the Environment's variable mapping. Built with
// `-tags ginja_refcheck`, a caller can follow this with LiveValueCount to
// assert every constructed Value was eventually released.
func (e *Environment) Destroy() {
	e.vars.Unref()
	e.vars = nil
}
