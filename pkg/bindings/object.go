package bindings

import (
	"strconv"
	"strings"

	"github.com/axarion/axscript/pkg/capabilities"
	"github.com/axarion/axscript/pkg/interpreter"
)

const defaultJumpForce = 10

func resolveTarget(c *interpreter.Call, capability string) (any, string) {
	if capability == capabilities.CapInput {
		if in := c.Input(); in != nil {
			return in, ""
		}
		if in, ok := c.ContextObject().(capabilities.Input); ok {
			return in, ""
		}
		return nil, "no input source is bound"
	}
	obj := c.ContextObject()
	if obj == nil {
		return nil, "no context object is bound"
	}
	if !supports(obj, capability) {
		return nil, "context object does not support '" + capability + "'"
	}
	return obj, ""
}

func supports(obj any, capability string) bool {
	for _, c := range capabilities.Describe(obj) {
		if c == capability {
			return true
		}
	}
	return false
}

func objectBindings() []Def {
	return []Def{
		{
			Name: "move", Mode: "effect", Capability: capabilities.CapTransform,
			Usage:   "move(dx, dy = 0)",
			Default: null,
			Execute: func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
				dx, err := number(c, args, 0)
				if err != nil {
					return nil, err
				}
				dy, err := optNumber(c, args, 1, 0)
				if err != nil {
					return nil, err
				}
				t := target.(capabilities.Transform)
				x, y := t.Position()
				t.SetPosition(x+dx, y+dy)
				return interpreter.Null{}, nil
			},
		},
		{
			Name: "rotate", Mode: "effect", Capability: capabilities.CapTransform,
			Usage:   "rotate(degrees)",
			Default: null,
			Execute: func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
				deg, err := number(c, args, 0)
				if err != nil {
					return nil, err
				}
				t := target.(capabilities.Transform)
				t.SetRotation(t.Rotation() + deg)
				return interpreter.Null{}, nil
			},
		},
		{
			Name: "getPosition", Mode: "read", Capability: capabilities.CapTransform,
			Usage:   "getPosition() → {x, y}",
			Default: zeroVec,
			Execute: func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
				return vec(target.(capabilities.Transform).Position()), nil
			},
		},
		{
			Name: "setPosition", Mode: "effect", Capability: capabilities.CapTransform,
			Usage:   "setPosition(x, y)",
			Default: null,
			Execute: func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
				x, y, err := pair(c, args)
				if err != nil {
					return nil, err
				}
				target.(capabilities.Transform).SetPosition(x, y)
				return interpreter.Null{}, nil
			},
		},
		{
			Name: "getVelocity", Mode: "read", Capability: capabilities.CapKinematic,
			Usage:   "getVelocity() → {x, y}",
			Default: zeroVec,
			Execute: func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
				return vec(target.(capabilities.Kinematic).Velocity()), nil
			},
		},
		{
			Name: "setVelocity", Mode: "effect", Capability: capabilities.CapKinematic,
			Usage:   "setVelocity(vx, vy)",
			Default: null,
			Execute: func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
				vx, vy, err := pair(c, args)
				if err != nil {
					return nil, err
				}
				target.(capabilities.Kinematic).SetVelocity(vx, vy)
				return interpreter.Null{}, nil
			},
		},
		{
			Name: "jump", Mode: "effect", Capability: capabilities.CapPhysics,
			Usage:   "jump(force = 10)",
			Default: null,
			Execute: func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
				force, err := optNumber(c, args, 0, defaultJumpForce)
				if err != nil {
					return nil, err
				}
				target.(capabilities.Physics).Jump(force)
				return interpreter.Null{}, nil
			},
		},
		{
			Name: "isOnGround", Mode: "read", Capability: capabilities.CapPhysics,
			Usage:   "isOnGround() → boolean",
			Default: falseValue,
			Execute: func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
				return interpreter.Bool{Value: target.(capabilities.Physics).IsOnGround()}, nil
			},
		},
		{
			Name: "applyForce", Mode: "effect", Capability: capabilities.CapPhysics,
			Usage:   "applyForce(fx, fy)",
			Default: null,
			Execute: func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
				fx, fy, err := pair(c, args)
				if err != nil {
					return nil, err
				}
				target.(capabilities.Physics).ApplyForce(fx, fy)
				return interpreter.Null{}, nil
			},
		},
		{
			Name: "hasTag", Mode: "read", Capability: capabilities.CapTags,
			Usage:   "hasTag(tag) → boolean",
			Default: falseValue,
			Execute: func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
				tag, err := text(c, args, 0)
				if err != nil {
					return nil, err
				}
				return interpreter.Bool{Value: target.(capabilities.Tagged).HasTag(tag)}, nil
			},
		},
		{
			Name: "findObjectsByTag", Mode: "read", Capability: capabilities.CapScene,
			Usage:   "findObjectsByTag(tag) → array",
			Default: emptyArray,
			Execute: func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
				tag, err := text(c, args, 0)
				if err != nil {
					return nil, err
				}
				scene := target.(capabilities.SceneMember).Scene()
				if scene == nil {
					return emptyArray(), nil
				}
				found := scene.FindByTag(tag)
				elems := make([]interpreter.Value, len(found))
				for i, o := range found {
					elems[i] = interpreter.FromNative(o)
				}
				return interpreter.NewArray(elems), nil
			},
		},
		{
			Name: "getProperty", Mode: "read", Capability: capabilities.CapProperties,
			Usage:   "getProperty(name) → any",
			Default: undefined,
			Execute: func(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
				name, err := text(c, args, 0)
				if err != nil {
					return nil, err
				}
				v, ok := target.(capabilities.Properties).GetProperty(name)
				if !ok {
					return interpreter.Undefined{}, nil
				}
				return interpreter.FromNative(v), nil
			},
		},
		{
			Name: "setProperty", Mode: "effect", Capability: capabilities.CapProperties,
			Usage:   "setProperty(name, value)",
			Default: null,
			Execute: setProperty,
		},
	}
}

// setProperty understands a few properties specially: position takes {x, y},
// visible and active are coerced to booleans and color accepts "r,g,b".
func setProperty(c *interpreter.Call, target any, args []interpreter.Value) (interpreter.Value, error) {
	name, err := text(c, args, 0)
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, c.Errorf("setProperty() requires 2 arguments, got %d", len(args))
	}
	val := args[1]
	props := target.(capabilities.Properties)

	switch name {
	case "position":
		x, y, ok := xy(val)
		if !ok {
			return nil, c.Errorf("Position must be an object with x and y properties")
		}
		if t, ok := target.(capabilities.Transform); ok {
			t.SetPosition(x, y)
		} else {
			props.SetProperty(name, map[string]any{"x": x, "y": y})
		}
	case "visible", "active":
		props.SetProperty(name, interpreter.Truthy(val))
	case "color":
		if s, ok := val.(interpreter.String); ok {
			rgb, err := parseColor(s.Value)
			if err != nil {
				return nil, c.Errorf("Color must be in format 'r,g,b' or an array")
			}
			props.SetProperty(name, rgb)
			break
		}
		props.SetProperty(name, interpreter.ToNative(val))
	default:
		props.SetProperty(name, interpreter.ToNative(val))
	}
	return interpreter.Null{}, nil
}

func parseColor(s string) ([]any, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, strconv.ErrSyntax
	}
	rgb := make([]any, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		rgb[i] = float64(n)
	}
	return rgb, nil
}

func xy(v interpreter.Value) (float64, float64, bool) {
	obj, ok := v.(*interpreter.Object)
	if !ok {
		return 0, 0, false
	}
	xv, _ := obj.Get("x")
	yv, _ := obj.Get("y")
	x, xok := xv.(interpreter.Number)
	y, yok := yv.(interpreter.Number)
	return x.Value, y.Value, xok && yok
}
