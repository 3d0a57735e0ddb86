package ginja

import (
	"strings"
)

// evaluator walks one Render call's extends chain and AST, grounded on
// original_source/src/roscha.c's eval_template/eval_subblocks/eval_tag/
// eval_loop/eval_branch family. It is constructed fresh per Render call so a
// template can be rendered reentrantly (no shared mutable state survives
// across calls, unlike the C original's tmpl->child back-pointer).
type evaluator struct {
	env *Environment

	// current is the outermost ancestor in the current extends chain — the
	// template whose own top-level blocks are actually walked (every other
	// ancestor only contributes named-block overrides).
	current *Template

	// childChain holds every template between current and the Render call's
	// original leaf, ordered leaf-first, so a named block resolves to the
	// most specific override (spec.md §4.3 inheritance resolution).
	childChain []*Template

	broke     bool
	localErrs []error
}

func (ev *evaluator) recordError(tok *Token, format string, args ...interface{}) {
	name := ev.env.renderingName
	err := newTokenError(name, tok, "evaluator", format, args...)
	ev.localErrs = append(ev.localErrs, err)
	logger.Debugf("%s", err)
}

// renderTemplate resolves name's extends chain, grounded on eval_template:
// each step either recurses into the declared parent (appending the
// template just read to childChain) or, once a template with no extends
// is reached, renders that template's own blocks as "current".
func (ev *evaluator) renderTemplate(name string, childChain []*Template, depth int, out *strings.Builder) error {
	tmpl, ok := ev.env.templates[name]
	if !ok {
		return newTokenError(ev.env.renderingName, nil, "evaluator", "undefined template %q", name)
	}
	if depth > ev.env.opts.MaxInheritanceDepth {
		return newTokenError(name, nil, "evaluator", "extends chain too deep, possible cycle involving template %q", name)
	}

	if len(tmpl.Blocks) > 0 {
		if tb, ok := tmpl.Blocks[0].(*TagBlock); ok {
			if ext, ok := tb.Tag.(*ExtendsTag); ok {
				next := make([]*Template, len(childChain)+1)
				copy(next, childChain)
				next[len(childChain)] = tmpl
				return ev.renderTemplate(ext.Parent, next, depth+1, out)
			}
		}
	}

	ev.current = tmpl
	ev.childChain = childChain
	ev.renderBlocks(tmpl.Blocks, out)
	return nil
}

// renderBlocks walks a block list in order, stopping early once a break or
// an evaluation error has been recorded (spec.md §7: "the evaluator aborts
// the current block-list walk"; grounded on eval_subblocks' early exit on
// THERES_ERRORS or env->internal->brk).
func (ev *evaluator) renderBlocks(blocks []Block, out *strings.Builder) {
	for _, b := range blocks {
		switch bl := b.(type) {
		case *ContentBlock:
			out.WriteString(bl.Text)
		case *VariableBlock:
			val := ev.evalExpr(bl.Expr)
			out.WriteString(val.String())
			val.Unref()
		case *TagBlock:
			ev.evalTag(bl.Tag, out)
		}
		if ev.broke || len(ev.localErrs) > 0 {
			return
		}
	}
}

func (ev *evaluator) evalTag(tag Tag, out *strings.Builder) {
	switch t := tag.(type) {
	case *IfTag:
		ev.evalIf(t, out)
	case *ForTag:
		ev.evalFor(t, out)
	case *NamedBlockTag:
		ev.evalNamedBlock(t, out)
	case *ExtendsTag:
		ev.recordError(t.Tok, "'extends' tag can only be the first block of a template")
	case *BreakTag:
		ev.broke = true
	}
}

// evalIf walks the branch chain, grounded on eval_branch: the first branch
// whose condition is truthy (or the terminal else, whose Condition is nil)
// renders and the rest are skipped.
func (ev *evaluator) evalIf(it *IfTag, out *strings.Builder) {
	for br := it.Root; br != nil; br = br.Next {
		if br.Condition == nil {
			ev.renderBlocks(br.Body, out)
			return
		}
		cond := ev.evalExpr(br.Condition)
		truthy := cond.Truthy()
		cond.Unref()
		if truthy {
			ev.renderBlocks(br.Body, out)
			return
		}
	}
}

// evalNamedBlock resolves name's override by scanning childChain leaf-first
// and falling back to the block's own body (spec.md §4.3; grounded on
// get_child_tblock's depth-first-to-the-leaf-then-unwind search).
func (ev *evaluator) evalNamedBlock(nb *NamedBlockTag, out *strings.Builder) {
	chosen := nb
	for _, child := range ev.childChain {
		if override, ok := child.NamedBlocks[nb.Name]; ok {
			chosen = override
			break
		}
	}
	ev.renderBlocks(chosen.Body, out)
}

// evalFor implements the sequence/mapping loop, grounded on eval_loop's
// exact shadow/restore timing: the outer "loop" and item bindings are each
// captured once before the loop, the item binding is freshly bound and torn
// down every iteration, and both outer bindings are restored exactly once
// after the entire loop finishes (spec.md §4.3, §9 Open Questions — for over
// a mapping binds the value, matching the source).
func (ev *evaluator) evalFor(ft *ForTag, out *strings.Builder) {
	seq := ev.evalExpr(ft.Seq)
	defer seq.Unref()

	var elems []*Value
	switch seq.Kind {
	case KindSequence:
		elems = seq.SeqEach()
	case KindMapping:
		keys := seq.MapKeys()
		elems = make([]*Value, len(keys))
		for i, k := range keys {
			elems[i] = seq.MapGet(k)
		}
	default:
		ev.recordError(ft.Tok, "for-loop sequence expression must be a sequence or mapping, got %s", kindName(seq.Kind))
		return
	}

	vars := ev.env.vars
	savedItem, hadItem := vars.MapGetOK(ft.Item)

	loopVal := NewMapping()
	idxVal := NewInt(0)
	if old := loopVal.MapSet("index", idxVal); old != nil {
		old.Unref()
	}
	idxVal.Unref()

	replacedLoop := vars.MapSet("loop", loopVal)

	for i, item := range elems {
		idxVal.integer = int64(i)
		vars.MapSet(ft.Item, item)
		ev.renderBlocks(ft.Body, out)
		vars.MapUnset(ft.Item)

		if ev.broke {
			ev.broke = false
			break
		}
		if len(ev.localErrs) > 0 {
			break
		}
	}

	if replacedLoop != nil {
		if discarded := vars.MapSet("loop", replacedLoop); discarded != nil {
			discarded.Unref()
		}
		replacedLoop.Unref()
	} else {
		vars.MapUnset("loop")
	}
	loopVal.Unref()

	// An empty loop never displaced the outer item binding, so there is
	// nothing to restore.
	if hadItem && len(elems) > 0 {
		if discarded := vars.MapSet(ft.Item, savedItem); discarded != nil {
			discarded.Unref()
		}
		savedItem.Unref()
	}
}

// evalExpr always returns a reference the caller owns and must Unref,
// whether that means promoting a borrowed container lookup (Ref()) or
// handing over a freshly constructed value — a uniform convention the
// original's mixed get/ref-returning API does not itself provide, but which
// every call site below relies on.
func (ev *evaluator) evalExpr(expr Expr) *Value {
	switch e := expr.(type) {
	case *Identifier:
		return ev.env.vars.MapGet(e.Name).Ref()

	case *IntLiteral:
		return NewInt(e.Value)

	case *BoolLiteral:
		return boolValue(e.Value)

	case *StringLiteral:
		return NewString(e.Value)

	case *PrefixExpr:
		right := ev.evalExpr(e.Right)
		defer right.Unref()
		switch e.Op {
		case BANG, NOT:
			return right.Negate()
		case MINUS:
			if right.Kind != KindInt {
				ev.recordError(e.Tok, "unary '-' requires an integer, got %s", kindName(right.Kind))
				return Null
			}
			return NewInt(-right.Int())
		}
		return Null

	case *InfixExpr:
		left := ev.evalExpr(e.Left)
		defer left.Unref()
		right := ev.evalExpr(e.Right)
		defer right.Unref()
		return ev.evalInfix(e, left, right)

	case *MemberExpr:
		left := ev.evalExpr(e.Left)
		defer left.Unref()
		if left.Kind != KindMapping {
			ev.recordError(e.Tok, "'.' requires a mapping on the left, got %s", kindName(left.Kind))
			return Null
		}
		return left.MapGet(e.Key.Name).Ref()

	case *IndexExpr:
		left := ev.evalExpr(e.Left)
		defer left.Unref()
		if left.Kind != KindSequence {
			ev.recordError(e.Tok, "'[...]' requires a sequence on the left, got %s", kindName(left.Kind))
			return Null
		}
		key := ev.evalExpr(e.Key)
		defer key.Unref()
		if key.Kind != KindInt {
			ev.recordError(e.Tok, "'[...]' index must be an integer, got %s", kindName(key.Kind))
			return Null
		}
		return left.SeqAt(key.Int())
	}
	return Null
}

// evalInfix implements spec.md §4.3's operator table together with the
// Design Notes' resolution of the comparison ambiguity: arithmetic and
// ordering/equality comparisons both require two ints (anything else is a
// type error, per §9 "any other mixed-type comparison should report a type
// error, not an ambiguous truthy/falsy compare" — overriding §4.3's looser
// "otherwise, compare by truthiness" wording); `and`/`or` combine truthiness
// regardless of operand kind.
func (ev *evaluator) evalInfix(e *InfixExpr, left, right *Value) *Value {
	switch e.Op {
	case PLUS, MINUS, ASTERISK, SLASH:
		if left.Kind != KindInt || right.Kind != KindInt {
			ev.recordError(e.Tok, "arithmetic operator '%s' requires two integers, got %s and %s", e.Op, kindName(left.Kind), kindName(right.Kind))
			return Null
		}
		a, b := left.Int(), right.Int()
		switch e.Op {
		case PLUS:
			return NewInt(a + b)
		case MINUS:
			return NewInt(a - b)
		case ASTERISK:
			return NewInt(a * b)
		case SLASH:
			if b == 0 {
				ev.recordError(e.Tok, "division by zero")
				return Null
			}
			return NewInt(a / b)
		}

	case LT, GT, LTE, GTE, EQ, NOTEQ:
		if left.Kind != KindInt || right.Kind != KindInt {
			ev.recordError(e.Tok, "comparison operator '%s' requires two integers, got %s and %s", e.Op, kindName(left.Kind), kindName(right.Kind))
			return Null
		}
		a, b := left.Int(), right.Int()
		switch e.Op {
		case LT:
			return boolValue(a < b)
		case GT:
			return boolValue(a > b)
		case LTE:
			return boolValue(a <= b)
		case GTE:
			return boolValue(a >= b)
		case EQ:
			return boolValue(a == b)
		case NOTEQ:
			return boolValue(a != b)
		}

	case AND:
		return boolValue(left.Truthy() && right.Truthy())
	case OR:
		return boolValue(left.Truthy() || right.Truthy())
	}
	return Null
}

func kindName(k Kind) string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString, KindSlice:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}
