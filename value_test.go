package ginja

import (
	. "gopkg.in/check.v1"
)

type ValueSuite struct{}

var _ = Suite(&ValueSuite{})

func (s *ValueSuite) TestSingletonsNeverRelease(c *C) {
	Null.Ref()
	Null.Unref()
	Null.Unref()
	True.Ref()
	True.Unref()
	c.Assert(Null.Kind, Equals, KindNull)
	c.Assert(True.Truthy(), Equals, true)
	c.Assert(False.Truthy(), Equals, false)
}

func (s *ValueSuite) TestTruthiness(c *C) {
	c.Assert(Null.Truthy(), Equals, false)
	c.Assert(False.Truthy(), Equals, false)
	c.Assert(True.Truthy(), Equals, true)

	zero := NewInt(0)
	nonzero := NewInt(7)
	c.Assert(zero.Truthy(), Equals, false)
	c.Assert(nonzero.Truthy(), Equals, true)
	zero.Unref()
	nonzero.Unref()

	empty := NewString("")
	c.Assert(empty.Truthy(), Equals, true)
	empty.Unref()

	seq := NewSequence()
	c.Assert(seq.Truthy(), Equals, true)
	seq.Unref()
}

func (s *ValueSuite) TestNegate(c *C) {
	c.Assert(Null.Negate(), Equals, True)
	c.Assert(False.Negate(), Equals, True)
	c.Assert(True.Negate(), Equals, False)
}

func (s *ValueSuite) TestSequenceOwnershipAndTextForm(c *C) {
	seq := NewSequence()
	a := NewInt(1)
	b := NewInt(2)
	seq.SeqPush(a)
	seq.SeqPush(b)
	a.Unref() // caller's own creation ref; seq now solely owns it
	b.Unref()

	c.Assert(seq.SeqLen(), Equals, 2)
	c.Assert(seq.String(), Equals, "[ 1, 2, ]")

	got := seq.SeqAt(0)
	c.Assert(got.Int(), Equals, int64(1))
	got.Unref()

	c.Assert(seq.SeqAt(-1), Equals, Null)
	c.Assert(seq.SeqAt(2), Equals, Null)

	seq.Unref()
}

func (s *ValueSuite) TestMappingSetGetUnset(c *C) {
	m := NewMapping()
	v := NewString("x")
	c.Assert(m.MapSet("k", v), IsNil)
	v.Unref()

	got := m.MapGet("k")
	c.Assert(got.Text(), Equals, "x")

	_, ok := m.MapGetOK("k")
	c.Assert(ok, Equals, true)
	_, ok = m.MapGetOK("missing")
	c.Assert(ok, Equals, false)

	c.Assert(m.MapGet("missing"), Equals, Null)

	replacement := NewInt(5)
	old := m.MapSet("k", replacement)
	c.Assert(old, NotNil)
	old.Unref()
	replacement.Unref()

	m.MapUnset("k")
	c.Assert(m.MapGet("k"), Equals, Null)
	c.Assert(m.MapKeys(), HasLen, 0)

	m.Unref()
}

func (s *ValueSuite) TestMappingTextForm(c *C) {
	m := NewMapping()
	v := NewInt(42)
	m.MapSet("k", v)
	v.Unref()
	c.Assert(m.String(), Equals, `{ "k": 42, }`)
	m.Unref()
}

func (s *ValueSuite) TestEmptyContainerTextForm(c *C) {
	seq := NewSequence()
	c.Assert(seq.String(), Equals, "[ ]")
	seq.Unref()

	m := NewMapping()
	c.Assert(m.String(), Equals, "{ }")
	m.Unref()
}
