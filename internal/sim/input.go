package sim

import "math"

// Button bits in the input bitmask, matching the wire contract.
const (
	ButtonFire uint8 = 1 << iota
	ButtonRoll
	ButtonReload
	ButtonSkill
)

// InputState is one tick of captured input for a single player.
type InputState struct {
	Sequence uint64
	MoveX    float64
	MoveY    float64
	Aim      float64
	CursorX  float64
	CursorY  float64
	Buttons  uint8
}

// ItemStack is a player's owned quantity of one item definition.
type ItemStack struct {
	Key    string
	Stacks int
}

// SystemInputIntent translates staged inputs into velocity, aim, and button
// edge flags. Players without input this tick coast to a stop; dead players
// are ignored entirely.
func SystemInputIntent(w *World, dt float64) {
	for _, e := range w.playerOrder {
		p := w.Players.Get(e)
		if p == nil || p.Dead {
			continue
		}
		in, ok := w.input(e)

		held := in.Buttons
		if !ok {
			held = 0
		}
		// Edge flags latch transitions against the previous tick's held set.
		p.FirePressed = held&ButtonFire != 0 && p.heldButtons&ButtonFire == 0
		p.RollPressed = held&ButtonRoll != 0 && p.heldButtons&ButtonRoll == 0
		p.ReloadPressed = held&ButtonReload != 0 && p.heldButtons&ButtonReload == 0
		p.SkillPressed = held&ButtonSkill != 0 && p.heldButtons&ButtonSkill == 0
		p.heldButtons = held

		vel := w.Velocities.Get(e)
		if vel == nil {
			continue
		}
		if w.Rolls.Has(e) {
			// Roll owns velocity until it ends.
			continue
		}
		if !ok {
			vel.X = 0
			vel.Y = 0
			continue
		}

		dx, dy := in.MoveX, in.MoveY
		if length := math.Hypot(dx, dy); length > 1 {
			dx /= length
			dy /= length
		}
		speed := 0.0
		if s := w.Speeds.Get(e); s != nil {
			speed = s.Value
		}
		vel.X = dx * speed
		vel.Y = dy * speed
		p.Aim = in.Aim
		p.CursorX = in.CursorX
		p.CursorY = in.CursorY
	}
}
