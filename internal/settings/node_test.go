package settings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNode(t *testing.T) *Node {
	t.Helper()
	return NewNode(openTestStore(t, ""))
}

func TestNode_CurrentDefaultsWhenEmpty(t *testing.T) {
	n := newTestNode(t)
	assert.Equal(t, Defaults(), n.Current())
}

func TestNode_SetAndCurrent(t *testing.T) {
	n := newTestNode(t)

	require.NoError(t, n.Set("crossSpinPeriod", "1200"))
	require.NoError(t, n.Set("centerShape", "square"))

	s := n.Current()
	assert.Equal(t, 1200, s.CrossSpinPeriod)
	assert.Equal(t, CenterSquare, s.CenterShape)

	err := n.Set("bogus", 1)
	assert.True(t, errors.Is(err, ErrUnknownKey))
}

func TestNode_OnChangeFiltersKeys(t *testing.T) {
	n := newTestNode(t)
	var batches [][]string
	n.OnChange(func(keys []string) { batches = append(batches, keys) })

	require.NoError(t, n.Set("opacity", 0.3))
	require.NoError(t, n.Store().Set("saved_x", map[string]any{"opacity": 1}))
	require.NoError(t, n.Store().Set("unrelated", 1))

	assert.Equal(t, [][]string{{"opacity"}}, batches)
}

func TestNode_ProfileLoadNotifiesOnce(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.Apply(map[string]any{"crossColor": "#ff0000", "crossLength": 30}))
	require.NoError(t, n.SaveProfile("red"))
	require.NoError(t, n.RestoreDefaults())
	require.NoError(t, n.SaveProfile("plain"))

	var batches [][]string
	var seen []Settings
	n.OnChange(func(keys []string) {
		batches = append(batches, keys)
		seen = append(seen, n.Current())
	})
	require.NoError(t, n.LoadProfile("red"))

	require.Len(t, batches, 1)
	assert.Equal(t, []string{"crossColor", "crossLength", ProfileNameKey}, batches[0])
	// the listener already sees the whole profile, never a half-applied one
	assert.Equal(t, "#ff0000", seen[0].CrossColor)
	assert.Equal(t, 30.0, seen[0].CrossLength)
}

func TestNode_ApplyIsAllOrNothing(t *testing.T) {
	n := newTestNode(t)

	err := n.Apply(map[string]any{"crossLength": 40, "crossColor": func() {}})

	require.Error(t, err)
	assert.Equal(t, Defaults(), n.Current())
	assert.Empty(t, n.Store().Keys(""))
}

func TestNode_CurrentIgnoresOutOfRangeStoredValues(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.Store().Set("crossLength", 1e40))
	require.NoError(t, n.Store().Set("crossSpinPeriod", 1e15))

	s := n.Current()
	assert.Equal(t, Defaults().CrossLength, s.CrossLength)
	assert.Equal(t, Defaults().CrossSpinPeriod, s.CrossSpinPeriod)
}

func TestNode_Profiles(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.Set("crossColor", "#ff0000"))
	require.NoError(t, n.SaveProfile("red"))
	require.NoError(t, n.Set("crossColor", "#0000ff"))
	require.NoError(t, n.SaveProfile("blue"))

	assert.Equal(t, []string{"blue", "red"}, n.Profiles())
	assert.Equal(t, "blue", n.ActiveProfile())

	require.NoError(t, n.LoadProfile("red"))
	assert.Equal(t, "#ff0000", n.Current().CrossColor)
	assert.Equal(t, "red", n.ActiveProfile())

	require.NoError(t, n.RemoveProfile("red"))
	assert.Equal(t, []string{"blue"}, n.Profiles())
	assert.Equal(t, "", n.ActiveProfile())
}

func TestNode_ProfileErrors(t *testing.T) {
	n := newTestNode(t)

	assert.True(t, errors.Is(n.SaveProfile("  "), ErrInvalidLabel))
	assert.True(t, errors.Is(n.LoadProfile(""), ErrInvalidLabel))
	assert.True(t, errors.Is(n.LoadProfile("nope"), ErrProfileNotFound))
	assert.True(t, errors.Is(n.RemoveProfile("nope"), ErrProfileNotFound))
}

func TestNode_ExportImport(t *testing.T) {
	source := newTestNode(t)
	require.NoError(t, source.Set("crossLength", 33))
	require.NoError(t, source.Set("circleEnabled", true))
	data, err := source.Export()
	require.NoError(t, err)

	target := newTestNode(t)
	require.NoError(t, target.Import(data))
	assert.Equal(t, source.Current(), target.Current())
}

func TestNode_ImportRejectsNonObject(t *testing.T) {
	n := newTestNode(t)

	for _, input := range []string{`[1,2]`, `"text"`, `null`, `{broken`} {
		err := n.Import([]byte(input))
		assert.True(t, errors.Is(err, ErrInvalidImport), input)
	}
}

func TestNode_ImportIgnoresUnknownKeys(t *testing.T) {
	n := newTestNode(t)

	require.NoError(t, n.Import([]byte(`{"opacity":0.4,"profileName":"x","evil":true}`)))

	assert.Equal(t, 0.4, n.Current().Opacity)
	assert.Equal(t, "", n.ActiveProfile())
}

func TestNode_RestoreDefaults(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.Set("crossLength", 99))

	require.NoError(t, n.RestoreDefaults())

	assert.Equal(t, Defaults(), n.Current())
}
