package ginja

import (
	"os"
	"path/filepath"

	"github.com/juju/testing"
	. "gopkg.in/check.v1"
)

type EnvironmentSuite struct {
	testing.IsolationSuite
}

var _ = Suite(&EnvironmentSuite{})

func (s *EnvironmentSuite) TestAddTemplateRegistersOnSuccess(c *C) {
	env := NewEnvironment()
	ok := env.AddTemplate("greeting", "Hello {{ name }}!")
	c.Assert(ok, Equals, true)
	c.Assert(env.CheckErrors(), HasLen, 0)

	_, present := env.templates["greeting"]
	c.Assert(present, Equals, true)
}

func (s *EnvironmentSuite) TestAddTemplateRecordsParseErrors(c *C) {
	env := NewEnvironment()
	ok := env.AddTemplate("broken", "{% endif %}")
	c.Assert(ok, Equals, false)
	c.Assert(env.CheckErrors(), Not(HasLen), 0)

	_, present := env.templates["broken"]
	c.Assert(present, Equals, false)
}

func (s *EnvironmentSuite) TestSetVarGetVarRoundTrip(c *C) {
	env := NewEnvironment()
	v := NewString("bar")
	env.SetVar("foo", v)
	v.Unref()

	got := env.GetVar("foo")
	c.Assert(got.Text(), Equals, "bar")
	c.Assert(env.GetVar("missing"), Equals, Null)
}

func (s *EnvironmentSuite) TestSetVarReplacesAndReleasesOld(c *C) {
	env := NewEnvironment()
	first := NewInt(1)
	env.SetVar("x", first)
	first.Unref()

	second := NewInt(2)
	env.SetVar("x", second)
	second.Unref()

	c.Assert(env.GetVar("x").Int(), Equals, int64(2))
	c.Assert(first.refcount, Equals, 0)
}

func (s *EnvironmentSuite) TestLoadDirRegistersOneTemplatePerFile(c *C) {
	dir := c.MkDir()
	err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("A: {{ x }}"), 0o644)
	c.Assert(err, IsNil)
	err = os.WriteFile(filepath.Join(dir, "b.txt"), []byte("B content"), 0o644)
	c.Assert(err, IsNil)
	c.Assert(os.Mkdir(filepath.Join(dir, "sub"), 0o755), IsNil)

	env := NewEnvironment()
	c.Assert(LoadDir(env, dir), IsNil)

	_, aOK := env.templates["a.txt"]
	_, bOK := env.templates["b.txt"]
	c.Assert(aOK, Equals, true)
	c.Assert(bOK, Equals, true)
	_, subOK := env.templates["sub"]
	c.Assert(subOK, Equals, false)

	xv := NewInt(7)
	env.SetVar("x", xv)
	xv.Unref()
	out, err := env.Render("a.txt")
	c.Assert(err, IsNil)
	c.Assert(out, Equals, "A: 7")
}

func (s *EnvironmentSuite) TestLoadDirOnMissingDirReturnsError(c *C) {
	env := NewEnvironment()
	err := LoadDir(env, filepath.Join(c.MkDir(), "does-not-exist"))
	c.Assert(err, NotNil)
}

func (s *EnvironmentSuite) TestRenderAccumulatesErrorsOnEnvironment(c *C) {
	env := NewEnvironment()
	env.AddTemplate("t", "{{ a / b }}")
	av := NewInt(1)
	env.SetVar("a", av)
	av.Unref()
	bv := NewInt(0)
	env.SetVar("b", bv)
	bv.Unref()

	_, err := env.Render("t")
	c.Assert(err, NotNil)
	c.Assert(env.CheckErrors(), Not(HasLen), 0)
}
