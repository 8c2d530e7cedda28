// Package capabilities defines what a host game object may expose to scripts
// and which of those capabilities a script is allowed to use.
package capabilities

// Capability names, one per interface below.
const (
	CapProperties = "properties"
	CapTransform  = "transform"
	CapKinematic  = "kinematic"
	CapTags       = "tags"
	CapPhysics    = "physics"
	CapScene      = "scene"
	CapInput      = "input"
)

// Known lists every capability name a policy may mention.
func Known() []string {
	return []string{CapProperties, CapTransform, CapKinematic, CapTags, CapPhysics, CapScene, CapInput}
}

// Values crossing this boundary are plain Go values: float64, string, bool,
// nil, []any and map[string]any.

// Properties is the minimal contract: named property access.
type Properties interface {
	GetProperty(name string) (any, bool)
	SetProperty(name string, value any)
}

// Transform exposes position and rotation (degrees).
type Transform interface {
	Position() (x, y float64)
	SetPosition(x, y float64)
	Rotation() float64
	SetRotation(deg float64)
}

// Kinematic exposes velocity.
type Kinematic interface {
	Velocity() (vx, vy float64)
	SetVelocity(vx, vy float64)
}

// Tagged exposes tag membership.
type Tagged interface {
	HasTag(tag string) bool
}

// Physics exposes the host's rigid body.
type Physics interface {
	ApplyForce(fx, fy float64)
	IsOnGround() bool
	Jump(force float64)
}

// Scene looks up other objects.
type Scene interface {
	FindByTag(tag string) []any
}

// SceneMember is implemented by objects that know their scene.
type SceneMember interface {
	Scene() Scene
}

// Input answers keyboard, mouse and axis queries for the current frame.
type Input interface {
	KeyPressed(key string) bool
	KeyJustPressed(key string) bool
	MouseClicked(button int) bool
	MousePressed(button int) bool
	MousePosition() (x, y float64)
	Axis(name string) float64
}

// Describe lists the capabilities obj implements, in Known order.
func Describe(obj any) []string {
	if obj == nil {
		return nil
	}
	var caps []string
	if _, ok := obj.(Properties); ok {
		caps = append(caps, CapProperties)
	}
	if _, ok := obj.(Transform); ok {
		caps = append(caps, CapTransform)
	}
	if _, ok := obj.(Kinematic); ok {
		caps = append(caps, CapKinematic)
	}
	if _, ok := obj.(Tagged); ok {
		caps = append(caps, CapTags)
	}
	if _, ok := obj.(Physics); ok {
		caps = append(caps, CapPhysics)
	}
	if _, ok := obj.(SceneMember); ok {
		caps = append(caps, CapScene)
	}
	if _, ok := obj.(Input); ok {
		caps = append(caps, CapInput)
	}
	return caps
}
