package bindings_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axarion/axscript/pkg/bindings"
	"github.com/axarion/axscript/pkg/capabilities"
	"github.com/axarion/axscript/pkg/diagnostics"
	"github.com/axarion/axscript/pkg/interpreter"
	"github.com/axarion/axscript/pkg/parser"
	"github.com/axarion/axscript/pkg/stdlib"
)

func options() interpreter.ExecOptions {
	builtins := stdlib.Defaults().All()
	for name, b := range bindings.Defaults().Builtins() {
		builtins[name] = b
	}
	return interpreter.ExecOptions{Builtins: builtins, Prototypes: stdlib.Prototypes()}
}

func execute(t *testing.T, src string, opts interpreter.ExecOptions) (*interpreter.ExecResult, error) {
	t.Helper()
	prog, diags := parser.Parse(src, "bindings_test.axs")
	require.Empty(t, diags, "parse errors: %s", diagnostics.FormatDiagnostics(diags, true))
	return interpreter.Execute(context.Background(), prog, opts)
}

func run(t *testing.T, src string, opts interpreter.ExecOptions) (string, []string) {
	t.Helper()
	res, err := execute(t, src, opts)
	require.NoError(t, err)
	return strings.Join(res.Output, "\n"), res.Warnings
}

func runtimeErr(t *testing.T, src string, opts interpreter.ExecOptions) *interpreter.RuntimeError {
	t.Helper()
	_, err := execute(t, src, opts)
	var rt *interpreter.RuntimeError
	require.True(t, errors.As(err, &rt), "expected RuntimeError, got %T: %v", err, err)
	return rt
}

func TestBindingsWithoutContextReturnDefaults(t *testing.T) {
	out, warnings := run(t, `
move(1, 2);
var p = getPosition();
print(p.x, p.y, isOnGround(), findObjectsByTag("enemy"), getProperty("hp"), keyPressed("left"), getAxis("horizontal"));
`, options())

	assert.Equal(t, "0 0 false [] undefined false 0", out)
	require.Len(t, warnings, 7)
	assert.Equal(t, "move(): no context object is bound; returning default", warnings[0])
	assert.Equal(t, "keyPressed(): no input source is bound; returning default", warnings[5])
}

func TestTransformAndKinematics(t *testing.T) {
	hero := capabilities.NewGameObject("hero", "player")
	opts := options()
	opts.Context = hero

	out, warnings := run(t, `
move(3, 4);
move(1);
print(getPosition().x, getPosition().y);
rotate(90);
rotate(-30);
setVelocity(1, 2);
applyForce(1, 1);
print(getVelocity().x, getVelocity().y, getProperty("rotation"));
print(hasTag("player"), hasTag("enemy"));
setPosition(-1, -2);
print(getPosition());
`, opts)

	assert.Empty(t, warnings)
	assert.Equal(t, strings.Join([]string{
		"4 4",
		"2 3 60",
		"true false",
		"{x: -1, y: -2}",
	}, "\n"), out)
	x, y := hero.Position()
	assert.Equal(t, []float64{-1, -2}, []float64{x, y})
}

func TestSetPropertySpecialCases(t *testing.T) {
	box := capabilities.NewGameObject("box")
	opts := options()
	opts.Context = box

	out, _ := run(t, `
setProperty("hp", 10);
setProperty("visible", 0);
setProperty("active", "yes");
setProperty("color", "255, 0, 10");
setProperty("position", {x: 7, y: 8});
setProperty("stats", {speed: 2});
print(getProperty("hp"), getProperty("visible"), getProperty("active"), getProperty("color"));
print(getPosition().x, getProperty("stats").speed, getProperty("missing"));
`, opts)

	assert.Equal(t, "10 false true [255, 0, 10]\n7 2 undefined", out)
	v, _ := box.GetProperty("color")
	assert.Equal(t, []any{255.0, 0.0, 10.0}, v)

	rt := runtimeErr(t, `setProperty("position", 5);`, opts)
	assert.Equal(t, "Position must be an object with x and y properties", rt.Message)

	rt = runtimeErr(t, `setProperty("color", "red");`, opts)
	assert.Equal(t, "Color must be in format 'r,g,b' or an array", rt.Message)

	rt = runtimeErr(t, `move("x");`, opts)
	assert.Equal(t, diagnostics.EType, rt.Code)

	out, _ = run(t, `try { setProperty("position", null); } catch (e) { print("caught: " + e); }`, opts)
	assert.Equal(t, "caught: Position must be an object with x and y properties", out)
}

func TestSetPropertyWithCyclicValue(t *testing.T) {
	box := capabilities.NewGameObject("box")
	opts := options()
	opts.Context = box

	out, _ := run(t, `
var loop = [1];
loop.push(loop);
setProperty("loop", loop);
print(getProperty("loop")[0]);
`, opts)

	assert.Equal(t, "1", out)
	v, ok := box.GetProperty("loop")
	require.True(t, ok)
	assert.Len(t, v, 2)
}

func TestPhysicsAndScene(t *testing.T) {
	hero := capabilities.NewGameObject("hero", "player")
	hero.SetOnGround(true)
	capabilities.NewScene(hero, capabilities.NewGameObject("goblin", "enemy"), capabilities.NewGameObject("orc", "enemy"))
	opts := options()
	opts.Context = hero

	out, _ := run(t, `
print(isOnGround());
jump(5);
print(isOnGround(), getVelocity().y);
jump();
print(getVelocity().y);
var enemies = findObjectsByTag("enemy");
print(len(enemies), enemies[0].name, enemies[1].name, findObjectsByTag("boss"));
`, opts)

	assert.Equal(t, strings.Join([]string{
		"true",
		"false -5",
		"-5",
		"2 goblin orc []",
	}, "\n"), out)
}

type labelOnly struct{ props map[string]any }

func (l *labelOnly) GetProperty(name string) (any, bool) {
	v, ok := l.props[name]
	return v, ok
}

func (l *labelOnly) SetProperty(name string, value any) { l.props[name] = value }

func TestMissingCapabilityDegrades(t *testing.T) {
	opts := options()
	opts.Context = &labelOnly{props: map[string]any{"text": "hi"}}

	out, warnings := run(t, `move(1, 1); print(getProperty("text"), hasTag("x"));`, opts)
	assert.Equal(t, "hi false", out)
	assert.Equal(t, []string{
		"move(): context object does not support 'transform'; returning default",
		"hasTag(): context object does not support 'tags'; returning default",
	}, warnings)
}

func TestPolicyDeniesCapability(t *testing.T) {
	policy, err := capabilities.Deny(capabilities.CapPhysics)
	require.NoError(t, err)
	opts := options()
	opts.Policy = policy

	rt := runtimeErr(t, "jump();", opts)
	assert.Equal(t, diagnostics.ECapDenied, rt.Code)
	assert.Equal(t, "capability 'physics' denied by policy (line 1)", rt.Error())

	out, _ := run(t, "move(1, 1); print(\"ok\");", opts)
	assert.Equal(t, "ok", out)
}

func TestInputQueries(t *testing.T) {
	opts := options()
	opts.Input = &capabilities.InputState{
		Pressed:     []string{"left"},
		JustPressed: []string{"space"},
		Held:        []int{1},
		Clicked:     []int{0},
		Mouse:       capabilities.Vec{X: 5, Y: 6},
		Axes:        map[string]float64{bindings.AxisHorizontal: -1, bindings.AxisVertical: 0.5},
	}

	out, warnings := run(t, `
print(keyPressed("left"), keyPressed("right"), keyJustPressed("space"));
print(mouseClicked(), mouseClicked(1), mousePressed(1));
print(getMousePos(), getAxis("horizontal"), getMovement());
`, opts)

	assert.Empty(t, warnings)
	assert.Equal(t, strings.Join([]string{
		"true false true",
		"true false true",
		"{x: 5, y: 6} -1 {x: -1, y: 0.5}",
	}, "\n"), out)
}

func TestRegistry(t *testing.T) {
	r := bindings.Defaults()
	names := r.Names()
	assert.Contains(t, names, "findObjectsByTag")
	assert.Contains(t, names, "getMovement")
	assert.Len(t, names, 20)

	move := r.Get("move")
	require.NotNil(t, move)
	assert.Equal(t, "effect", move.Mode)
	assert.Equal(t, capabilities.CapTransform, move.Capability)
	assert.Equal(t, "read", r.Get("getAxis").Mode)
	assert.Nil(t, r.Get("teleport"))
	assert.Len(t, r.Builtins(), len(names))
}
