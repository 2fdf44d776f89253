package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
)

func noop(Nesting, string) string { return "" }

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	assert.Equal(t, []string{"button", "callout", "card", "changelog", "collapsible", "steps"}, reg.Names())

	def, ok := reg.Lookup("button")
	require.True(t, ok)
	assert.True(t, def.SelfClosing)
	assert.Equal(t, KindButton, def.Kind)

	_, ok = reg.Lookup("tabs")
	assert.False(t, ok)
}

func TestRegister_Validation(t *testing.T) {
	reg := NewRegistry()

	cases := []Definition{
		{Name: "", Render: noop},
		{Name: "with space", Render: noop},
		{Name: "tabs", Render: noop},
		{Name: "norender"},
	}
	for _, def := range cases {
		err := reg.Register(def)
		require.Error(t, err, def.Name)
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation), def.Name)
	}

	require.NoError(t, reg.Register(Definition{Name: "note", Render: noop}))
	require.Error(t, reg.Register(Definition{Name: "note", Render: noop}))
}

func TestRegister_MapsBuiltinKind(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Definition{Name: "card", Render: noop}))
	require.NoError(t, reg.Register(Definition{Name: "aside", Render: noop}))

	card, _ := reg.Lookup("card")
	assert.Equal(t, KindCard, card.Kind)
	aside, _ := reg.Lookup("aside")
	assert.Equal(t, KindCustom, aside.Kind)
}

func TestRegistry_Freeze(t *testing.T) {
	reg := DefaultRegistry()
	reg.Freeze()
	err := reg.Register(Definition{Name: "late", Render: noop})
	require.Error(t, err)

	_, ok := reg.Lookup("card")
	assert.True(t, ok)
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindTabs, KindOf("tabs"))
	assert.Equal(t, KindCustom, KindOf("whatever"))
	assert.Equal(t, "collapsible", KindCollapsible.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
