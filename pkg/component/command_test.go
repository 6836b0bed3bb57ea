package component_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/component"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/el"
)

type saver struct {
	calls int
}

func (s *saver) Save() string {
	s.calls++
	return "saved"
}

func newResolution(t *testing.T, beans map[string]any) *el.Resolution {
	t.Helper()
	store := memory.NewStore()
	for name, val := range beans {
		require.NoError(t, store.Set(context.Background(), name, val))
	}
	return el.NewResolution(context.Background(), el.Binding{Scope: domain.ScopeRequest, Store: store})
}

func action(t *testing.T, src string) *el.MethodExpression {
	t.Helper()
	me, err := el.NewFactory().MethodExpression(src, reflect.TypeOf(""), []reflect.Type{})
	require.NoError(t, err)
	return me
}

func TestRegistry(t *testing.T) {
	reg := component.NewRegistry()

	c, err := reg.Create(component.TypeCommandButton)
	require.NoError(t, err)
	assert.IsType(t, &component.CommandButton{}, c)

	c, err = reg.Create(component.TypeCommandLink)
	require.NoError(t, err)
	assert.IsType(t, &component.CommandLink{}, c)

	_, err = reg.Create("arbor.Unknown")
	assert.ErrorIs(t, err, domain.ErrUnknownComponent)
}

func TestCommandButton(t *testing.T) {
	s := &saver{}
	res := newResolution(t, map[string]any{"form": s})

	btn := &component.CommandButton{}
	btn.ID = "save"
	btn.Value = "Save & Continue"
	btn.Action = action(t, "form.save")

	t.Run("render escapes the label", func(t *testing.T) {
		var sb strings.Builder
		require.NoError(t, btn.Render(&sb))
		out := sb.String()
		assert.Contains(t, out, `<button type="submit"`)
		assert.Contains(t, out, "Save &amp; Continue")
		assert.NotContains(t, out, "Save & Continue")
	})

	t.Run("fire invokes the action", func(t *testing.T) {
		outcome, err := btn.Fire(res)
		require.NoError(t, err)
		assert.Equal(t, "saved", outcome)
		assert.Equal(t, 1, s.calls)
	})
}

func TestCommandLink(t *testing.T) {
	res := newResolution(t, nil)

	link := &component.CommandLink{}
	link.ID = "next"
	link.Value = "Next page"
	link.Action = action(t, "next") // literal outcome

	var sb strings.Builder
	require.NoError(t, link.Render(&sb))
	assert.Contains(t, sb.String(), `<a id="next"`)
	assert.Contains(t, sb.String(), "Next page")

	outcome, err := link.Fire(res)
	require.NoError(t, err)
	assert.Equal(t, "next", outcome)
}

func TestCommand_Listeners(t *testing.T) {
	res := newResolution(t, map[string]any{"form": &saver{}})

	btn := &component.CommandButton{}
	btn.ID = "save"
	btn.Action = action(t, "form.save")

	var seen []string
	btn.AddActionListener(func(_ *el.Resolution, e component.Event) error {
		seen = append(seen, e.Source)
		return nil
	})

	outcome, err := btn.Fire(res)
	require.NoError(t, err)
	assert.Equal(t, "saved", outcome)
	assert.Equal(t, []string{"save"}, seen)
}
