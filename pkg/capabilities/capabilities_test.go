package capabilities_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axarion/axscript/pkg/capabilities"
)

func TestDescribe(t *testing.T) {
	assert.Nil(t, capabilities.Describe(nil))
	assert.Empty(t, capabilities.Describe(struct{}{}))
	assert.Equal(t, []string{
		capabilities.CapProperties, capabilities.CapTransform, capabilities.CapKinematic,
		capabilities.CapTags, capabilities.CapPhysics, capabilities.CapScene,
	}, capabilities.Describe(capabilities.NewGameObject("p")))
}

func TestPolicy(t *testing.T) {
	var nilPolicy *capabilities.Policy
	assert.True(t, nilPolicy.IsAllowed(capabilities.CapPhysics))
	assert.True(t, capabilities.AllowAll().IsAllowed(capabilities.CapPhysics))

	p, err := capabilities.Deny(capabilities.CapPhysics, capabilities.CapInput)
	require.NoError(t, err)
	assert.False(t, p.IsAllowed(capabilities.CapPhysics))
	assert.True(t, p.IsAllowed(capabilities.CapTransform))
	assert.Equal(t, []string{"input", "physics"}, p.DeniedList())

	_, err = capabilities.Deny("teleport")
	assert.Error(t, err)
}

func TestGameObjectPhysics(t *testing.T) {
	g := capabilities.NewGameObject("hero", "player")
	g.Jump(10)
	_, vy := g.Velocity()
	assert.Zero(t, vy, "cannot jump while airborne")

	g.SetOnGround(true)
	g.Jump(10)
	_, vy = g.Velocity()
	assert.Equal(t, -10.0, vy)
	assert.False(t, g.IsOnGround())

	g.ApplyForce(2, 3)
	vx, vy := g.Velocity()
	assert.Equal(t, 2.0, vx)
	assert.Equal(t, -7.0, vy)
}

func TestGameObjectProperties(t *testing.T) {
	g := capabilities.NewGameObject("hero")
	v, ok := g.GetProperty("visible")
	require.True(t, ok)
	assert.Equal(t, true, v)

	g.SetProperty("health", 100.0)
	v, ok = g.GetProperty("health")
	require.True(t, ok)
	assert.Equal(t, 100.0, v)

	g.SetPosition(3, 4)
	pos, _ := g.GetProperty("position")
	assert.Equal(t, map[string]any{"x": 3.0, "y": 4.0}, pos)

	g.SetProperty("name", "villain")
	assert.Equal(t, "villain", g.Name())

	_, ok = g.GetProperty("missing")
	assert.False(t, ok)
}

func TestSceneFindByTag(t *testing.T) {
	a := capabilities.NewGameObject("a", "enemy")
	b := capabilities.NewGameObject("b", "enemy", "boss")
	c := capabilities.NewGameObject("c")
	capabilities.NewScene(a, b, c)

	scene := a.Scene()
	require.NotNil(t, scene)
	assert.Len(t, scene.FindByTag("enemy"), 2)
	assert.Len(t, scene.FindByTag("boss"), 1)
	assert.Empty(t, scene.FindByTag("npc"))

	assert.Nil(t, capabilities.NewGameObject("lonely").Scene())
}

func TestDecodeEntity(t *testing.T) {
	src := `
name: hero
type: sprite
position: {x: 10, y: 20}
on_ground: true
tags: [player]
properties:
  health: 100
  inventory: [1, 2]
scene:
  - name: goblin
    tags: [enemy]
`
	g, err := capabilities.DecodeEntity(strings.NewReader(src), "inline")
	require.NoError(t, err)
	assert.Equal(t, "hero", g.Name())
	x, y := g.Position()
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 20.0, y)
	assert.True(t, g.IsOnGround())
	hp, _ := g.GetProperty("health")
	assert.Equal(t, 100.0, hp)
	inv, _ := g.GetProperty("inventory")
	assert.Equal(t, []any{1.0, 2.0}, inv)
	assert.Len(t, g.Scene().FindByTag("enemy"), 1)
}

func TestSpecSnapshot(t *testing.T) {
	g := capabilities.NewGameObject("hero", "player", "ally")
	g.SetPosition(3, 4)
	g.SetProperty("hp", 7.0)

	spec := g.Spec()
	assert.Equal(t, "hero", spec.Name)
	assert.Equal(t, "object", spec.Type)
	assert.Equal(t, capabilities.Vec{X: 3, Y: 4}, spec.Position)
	assert.Equal(t, []string{"ally", "player"}, spec.Tags)
	assert.Equal(t, 7.0, spec.Properties["hp"])

	spec.Properties["hp"] = 1.0
	hp, _ := g.GetProperty("hp")
	assert.Equal(t, 7.0, hp)

	rebuilt := spec.Build()
	x, y := rebuilt.Position()
	assert.Equal(t, []float64{3, 4}, []float64{x, y})
	assert.True(t, rebuilt.HasTag("ally"))
}

func TestDecodeEntityErrors(t *testing.T) {
	_, err := capabilities.DecodeEntity(strings.NewReader("type: sprite\n"), "noname")
	assert.ErrorContains(t, err, "name is required")

	_, err = capabilities.DecodeEntity(strings.NewReader("name: x\nbogus: 1\n"), "unknown")
	assert.ErrorContains(t, err, "decode entity file unknown")
}

func TestLoadEntity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entity.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: box\n"), 0o644))
	g, err := capabilities.LoadEntity(path)
	require.NoError(t, err)
	assert.Equal(t, "box", g.Name())

	_, err = capabilities.LoadEntity(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "open entity file")
}

func TestInputState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pressed: [left]
just_pressed: [space]
buttons: [0]
clicked: [2]
mouse: {x: 12, y: 34}
axes: {horizontal: -3, vertical: 0.5}
`), 0o644))
	in, err := capabilities.LoadInput(path)
	require.NoError(t, err)

	assert.True(t, in.KeyPressed("left"))
	assert.True(t, in.KeyPressed("space"))
	assert.False(t, in.KeyJustPressed("left"))
	assert.True(t, in.MousePressed(0))
	assert.True(t, in.MousePressed(2))
	assert.False(t, in.MouseClicked(0))
	x, y := in.MousePosition()
	assert.Equal(t, []float64{12, 34}, []float64{x, y})
	assert.Equal(t, -1.0, in.Axis("horizontal"))
	assert.Equal(t, 0.5, in.Axis("vertical"))
	assert.Zero(t, in.Axis("other"))
	assert.Equal(t, []string{capabilities.CapInput}, capabilities.Describe(in))

	_, err = capabilities.LoadInput(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read input file")
}
