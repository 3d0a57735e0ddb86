package ginja

import (
	"strconv"
	"strings"
)

// Kind discriminates the runtime value variants of spec.md §3 "Runtime
// values". Slice is kept distinct from String because the source buffer it
// borrows from must outlive it, even though both render identically
// (spec.md §4.4). Slice values are only made through NewSlice; the evaluator
// itself builds a String for every string literal.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindString
	KindSlice
	KindSequence
	KindMapping
)

// Value is a reference-counted runtime value, grounded directly on
// original_source/include/object.h's struct roscha_object: one tagged union
// with an explicit refcount, instead of the teacher's reflect.Value
// wrapper, which has no lifecycle concept at all (this is the one module
// where the C original, not flosch-pongo2, is the closer model — see
// DESIGN.md).
type Value struct {
	Kind     Kind
	refcount int

	boolean bool
	integer int64
	str     string // owned (KindString) or borrowed (KindSlice) text

	seq []*Value

	keys []string
	vals map[string]*Value
}

// Null, True, and False are interned singletons; their reference count is
// never touched and they are never released (spec.md §3 Invariants).
var (
	Null  = &Value{Kind: KindNull}
	True  = &Value{Kind: KindBool, boolean: true}
	False = &Value{Kind: KindBool, boolean: false}
)

func boolValue(b bool) *Value {
	if b {
		return True
	}
	return False
}

// NewInt constructs an owned integer value with refcount 1.
func NewInt(v int64) *Value {
	refcheckBorn()
	return &Value{Kind: KindInt, integer: v, refcount: 1}
}

// NewString constructs an owned string value with refcount 1.
func NewString(s string) *Value {
	refcheckBorn()
	return &Value{Kind: KindString, str: s, refcount: 1}
}

// NewSlice constructs a value borrowing a view into template source text;
// it renders identically to a String but documents that it does not own
// the backing bytes.
func NewSlice(s string) *Value {
	refcheckBorn()
	return &Value{Kind: KindSlice, str: s, refcount: 1}
}

// NewSequence constructs an empty ordered sequence with refcount 1.
func NewSequence() *Value {
	refcheckBorn()
	return &Value{Kind: KindSequence, refcount: 1}
}

// NewMapping constructs an empty string-keyed mapping with refcount 1. The
// environment's variable bindings are themselves one such mapping
// (spec.md §3 "The variable environment is itself a mapping value").
func NewMapping() *Value {
	refcheckBorn()
	return &Value{Kind: KindMapping, vals: make(map[string]*Value), refcount: 1}
}

// Ref increments the reference count and returns v, so call sites can chain
// (e.g. `return arg.Ref()`); singletons are no-ops (spec.md §3).
func (v *Value) Ref() *Value {
	if v == nil || v.Kind == KindNull || v.Kind == KindBool {
		return v
	}
	v.refcount++
	return v
}

// Unref decrements the reference count, releasing owned resources exactly
// once the count reaches zero (spec.md §3 Invariants). Singletons are
// no-ops.
func (v *Value) Unref() {
	if v == nil || v.Kind == KindNull || v.Kind == KindBool {
		return
	}
	v.refcount--
	if v.refcount <= 0 {
		v.release()
	}
}

// release drops owned references held by a container before the container
// itself is discarded.
func (v *Value) release() {
	switch v.Kind {
	case KindSequence:
		for _, item := range v.seq {
			item.Unref()
		}
	case KindMapping:
		for _, k := range v.keys {
			v.vals[k].Unref()
		}
	}
	refcheckDied()
}

// Truthy implements spec.md §9's disambiguation of the source's
// platform-dependent boolean-field overlap: null and false are falsy, true
// is truthy, an int is truthy iff non-zero, and every string/slice/
// sequence/mapping is truthy regardless of contents.
func (v *Value) Truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindBool:
		return v.boolean
	case KindInt:
		return v.integer != 0
	default:
		return true
	}
}

// Negate returns the boolean negation of v's truthiness, used by the `!`
// and `not` prefix operators (spec.md §4.3).
func (v *Value) Negate() *Value {
	return boolValue(!v.Truthy())
}

// Int returns the integer payload; the caller must only call this when Kind
// == KindInt.
func (v *Value) Int() int64 {
	return v.integer
}

// Text returns the raw character payload of a String or Slice value.
func (v *Value) Text() string {
	return v.str
}

// SeqPush appends item to a Sequence, taking a reference to it — inserting
// into a container increments the contained value's reference count
// (spec.md §6).
func (v *Value) SeqPush(item *Value) {
	item.Ref()
	v.seq = append(v.seq, item)
}

// SeqLen returns the number of elements in a Sequence; it is 0 for every
// other kind, including a Mapping.
func (v *Value) SeqLen() int {
	return len(v.seq)
}

// SeqAt implements index access (spec.md §4.3): an out-of-range index,
// including negative underflow, yields Null; an in-range index returns the
// element with its reference count incremented for the caller.
func (v *Value) SeqAt(i int64) *Value {
	if i < 0 || i >= int64(len(v.seq)) {
		return Null
	}
	return v.seq[i].Ref()
}

// SeqEach returns the sequence's elements in order, without affecting
// reference counts — used by the for-loop evaluator, which does not take
// ownership of what it iterates.
func (v *Value) SeqEach() []*Value {
	return v.seq
}

// MapSet inserts value under key, taking a reference to it. If a value was
// already bound to key, it is returned to the caller without decrementing
// its reference count (spec.md §6 "removing returns ownership to the
// caller (no decrement)" — a set-over-existing-key is a remove-then-insert).
func (v *Value) MapSet(key string, value *Value) *Value {
	old, existed := v.vals[key]
	value.Ref()
	v.vals[key] = value
	if existed {
		return old
	}
	v.keys = append(v.keys, key)
	return nil
}

// MapGet looks up key without adjusting any reference count — the caller
// must Ref() the result if it intends to retain it beyond the container's
// own lifetime (mirrors original_source's roscha_hmap_gets). Missing key
// returns Null.
func (v *Value) MapGet(key string) *Value {
	if val, ok := v.vals[key]; ok {
		return val
	}
	return Null
}

// MapGetOK is MapGet plus presence, used where a caller must tell "bound to
// Null" apart from "not bound at all" (the for-loop evaluator's outer-binding
// shadow/restore).
func (v *Value) MapGetOK(key string) (*Value, bool) {
	val, ok := v.vals[key]
	return val, ok
}

// MapPop removes key and returns its value without decrementing — ownership
// transfers to the caller.
func (v *Value) MapPop(key string) *Value {
	val, ok := v.vals[key]
	if !ok {
		return Null
	}
	delete(v.vals, key)
	v.keys = removeKey(v.keys, key)
	return val
}

// MapUnset removes key and decrements its value's reference count.
func (v *Value) MapUnset(key string) {
	val, ok := v.vals[key]
	if !ok {
		return
	}
	delete(v.vals, key)
	v.keys = removeKey(v.keys, key)
	val.Unref()
}

// MapKeys returns the mapping's keys in insertion order.
func (v *Value) MapKeys() []string {
	return v.keys
}

func removeKey(keys []string, key string) []string {
	for i, k := range keys {
		if k == key {
			return append(keys[:i], keys[i+1:]...)
		}
	}
	return keys
}

// String renders v's textual form (spec.md §4.4).
func (v *Value) String() string {
	var b strings.Builder
	v.writeTo(&b)
	return b.String()
}

func (v *Value) writeTo(b *strings.Builder) {
	switch v.Kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		if v.boolean {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindInt:
		b.WriteString(strconv.FormatInt(v.integer, 10))
	case KindString, KindSlice:
		b.WriteString(v.str)
	case KindSequence:
		b.WriteString("[ ")
		for _, item := range v.seq {
			item.writeTo(b)
			b.WriteString(", ")
		}
		b.WriteString("]")
	case KindMapping:
		b.WriteString("{ ")
		for _, k := range v.keys {
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			v.vals[k].writeTo(b)
			b.WriteString(", ")
		}
		b.WriteString("}")
	}
}
