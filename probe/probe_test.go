package probe

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type base struct {
	ID string
}

type widget struct {
	base
	Name  string
	Count int
}

func (w widget) Describe() string { return w.Name }

func (w *widget) Reset() { w.Count = 0 }

type keyed struct{}

func (keyed) Keys() []string { return []string{"beta", "alpha"} }

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := Output
	Output = &buf
	t.Cleanup(func() { Output = old })
	return &buf
}

func TestTryKeyHit(t *testing.T) {
	buf := capture(t)

	m := map[string]int{"total": 42}
	v, err := TryKey(m, "total")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Contains(t, buf.String(), "OK: key total is present")
}

func TestTryKeyHitNilValue(t *testing.T) {
	buf := capture(t)

	m := map[string]*int{"total": nil}
	_, err := TryKey(m, "total")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "value is nil")
}

func TestTryKeyMiss(t *testing.T) {
	buf := capture(t)

	m := map[string]int{"alpha": 1, "beta": 2}
	_, err := TryKey(m, "gamma")

	var ke *KeyError
	require.ErrorAs(t, err, &ke, "the original failure must not be suppressed")
	assert.Equal(t, "gamma", ke.Key)

	out := buf.String()
	assert.Contains(t, out, "KeyError: missing key -> gamma")
	assert.Contains(t, out, "MAP_KEYS: [alpha beta]")
	assert.Contains(t, out, "TYPE: map[string]int")
}

func TestTryAttrField(t *testing.T) {
	buf := capture(t)

	v, err := TryAttr(widget{Name: "w"}, "Name")
	require.NoError(t, err)
	assert.Equal(t, "w", v)
	assert.Contains(t, buf.String(), `OK: attribute "Name" is present`)
}

func TestTryAttrPromotedField(t *testing.T) {
	capture(t)

	v, err := TryAttr(widget{base: base{ID: "x9"}}, "ID")
	require.NoError(t, err)
	assert.Equal(t, "x9", v)
}

func TestTryAttrMethod(t *testing.T) {
	capture(t)

	v, err := TryAttr(widget{Name: "w"}, "Describe")
	require.NoError(t, err)
	fn, ok := v.(func() string)
	require.True(t, ok, "methods come back as bound method values")
	assert.Equal(t, "w", fn())
}

func TestTryAttrPointerMethodOnValue(t *testing.T) {
	capture(t)

	v, err := TryAttr(widget{Count: 3}, "Reset")
	require.NoError(t, err)
	_, ok := v.(func())
	assert.True(t, ok)
}

func TestTryAttrMiss(t *testing.T) {
	buf := capture(t)

	_, err := TryAttr(widget{}, "Nmae")

	var ae *AttrError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Nmae", ae.Name)
	assert.Equal(t, "probe.widget", ae.Type)

	out := buf.String()
	assert.Contains(t, out, `AttributeError: missing attribute -> "Nmae"`)
	assert.Contains(t, out, "ATTRS:")
	assert.Contains(t, out, "SUGGEST_ATTRS")
	assert.Contains(t, out, "Name", "the near-miss must appear in the suggestions")
}

func TestTryAttrNilObject(t *testing.T) {
	capture(t)

	_, err := TryAttr(nil, "Anything")
	var ae *AttrError
	require.ErrorAs(t, err, &ae)
}

func TestDumpKeysOrAttrsKeysInterface(t *testing.T) {
	buf := capture(t)

	DumpKeysOrAttrs(keyed{})
	out := buf.String()
	assert.Contains(t, out, "MODEL_KEYS: [alpha beta]")
	assert.Contains(t, out, "TYPE: probe.keyed")
}

func TestDumpKeysOrAttrsStruct(t *testing.T) {
	buf := capture(t)

	DumpKeysOrAttrs(&widget{})
	out := buf.String()
	for _, want := range []string{"Count", "Describe", "ID", "Name", "Reset"} {
		assert.Contains(t, out, want)
	}
}

func TestAttrErrorMessage(t *testing.T) {
	err := &AttrError{Name: "Foo", Type: "pkg.Bar"}
	assert.Equal(t, `pkg.Bar has no attribute "Foo"`, err.Error())
	assert.False(t, errors.Is(err, &KeyError{}))
}
