package sim

import "dust-and-lead/server/internal/ecs"

// Snapshot is the authoritative world state the server publishes each tick.
// Records are emitted in ascending entity-ID order so two worlds holding the
// same state serialize identically.
type Snapshot struct {
	Tick    uint64          `json:"tick"`
	Players []PlayerRecord  `json:"players"`
	Enemies []EnemyRecord   `json:"enemies"`
	Bullets []BulletRecord  `json:"bullets"`
	Nuggets []GoldNugget    `json:"nuggets,omitempty"`
	Zones   []MarkZone      `json:"zones,omitempty"`
	Run     *DirectorRecord `json:"run,omitempty"`
}

type PlayerRecord struct {
	ID        uint32  `json:"id"`
	Character string  `json:"character"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VX        float64 `json:"vx"`
	VY        float64 `json:"vy"`
	Aim       float64 `json:"aim"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	Gold      int     `json:"gold"`
	Rounds    int     `json:"rounds"`
	Reloading bool    `json:"reloading,omitempty"`
	Rolling   bool    `json:"rolling,omitempty"`
	Dead      bool    `json:"dead,omitempty"`
}

type EnemyRecord struct {
	ID     uint32  `json:"id"`
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health float64 `json:"health"`
	Max    float64 `json:"max"`
	State  string  `json:"state"`
	Phase  int     `json:"phase,omitempty"`
}

type BulletRecord struct {
	ID    uint32  `json:"id"`
	Owner uint32  `json:"owner"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Layer uint32  `json:"layer"`
}

type DirectorRecord struct {
	Stage int    `json:"stage"`
	Wave  int    `json:"wave"`
	Phase string `json:"phase"`
}

// HUDRecord is the per-player status summary pushed on a slower cadence than
// the full state stream.
type HUDRecord struct {
	Health        float64 `json:"health"`
	MaxHealth     float64 `json:"maxHealth"`
	Rounds        int     `json:"rounds"`
	CylinderSize  int     `json:"cylinderSize"`
	Reloading     bool    `json:"reloading,omitempty"`
	Gold          int     `json:"gold"`
	RollReady     int     `json:"rollReady"`
	ShowdownReady int     `json:"showdownReady"`
}

// HUD summarizes one player's status. Cooldowns are reported as ticks
// remaining, zero when the ability is ready.
func (w *World) HUD(e ecs.Entity) (HUDRecord, bool) {
	p := w.Players.Get(e)
	if p == nil {
		return HUDRecord{}, false
	}
	var rec HUDRecord
	rec.Gold = p.Gold
	if h := w.Healths.Get(e); h != nil {
		rec.Health = h.Current
		rec.MaxHealth = h.Max
	}
	if c := w.Cylinders.Get(e); c != nil {
		rec.Rounds = c.Rounds
		rec.CylinderSize = c.Size
		rec.Reloading = c.ReloadLeft > 0
	}
	if p.rollReadyAt > w.tick {
		rec.RollReady = int(p.rollReadyAt - w.tick)
	}
	if s := w.Showdowns.Get(e); s != nil && s.ReadyAtTick > w.tick {
		rec.ShowdownReady = int(s.ReadyAtTick - w.tick)
	}
	return rec, true
}

// Snapshot serializes the live world.
func (w *World) Snapshot() Snapshot {
	snap := Snapshot{Tick: w.tick}

	for _, e := range w.liveEntities() {
		pos := w.Positions.Get(e)
		if pos == nil {
			continue
		}
		vx, vy := 0.0, 0.0
		if vel := w.Velocities.Get(e); vel != nil {
			vx, vy = vel.X, vel.Y
		}

		if p := w.Players.Get(e); p != nil {
			rec := PlayerRecord{
				ID:        e.ID,
				Character: p.Character,
				X:         pos.X,
				Y:         pos.Y,
				VX:        vx,
				VY:        vy,
				Aim:       p.Aim,
				Gold:      p.Gold,
				Rolling:   w.Rolls.Has(e),
				Dead:      p.Dead,
			}
			if h := w.Healths.Get(e); h != nil {
				rec.Health = h.Current
				rec.MaxHealth = h.Max
			}
			if c := w.Cylinders.Get(e); c != nil {
				rec.Rounds = c.Rounds
				rec.Reloading = c.ReloadLeft > 0
			}
			snap.Players = append(snap.Players, rec)
			continue
		}

		if ai := w.Enemies.Get(e); ai != nil {
			rec := EnemyRecord{
				ID:    e.ID,
				Type:  ai.Type,
				X:     pos.X,
				Y:     pos.Y,
				State: ai.State.String(),
			}
			if h := w.Healths.Get(e); h != nil {
				rec.Health = h.Current
				rec.Max = h.Max
			}
			if bp := w.BossPhases.Get(e); bp != nil {
				rec.Phase = bp.Index
			}
			snap.Enemies = append(snap.Enemies, rec)
			continue
		}

		if b := w.Bullets.Get(e); b != nil {
			layer := uint32(0)
			if col := w.Colliders.Get(e); col != nil {
				layer = col.Layer
			}
			snap.Bullets = append(snap.Bullets, BulletRecord{
				ID:    e.ID,
				Owner: b.Owner.ID,
				X:     pos.X,
				Y:     pos.Y,
				VX:    vx,
				VY:    vy,
				Layer: layer,
			})
		}
	}

	snap.Nuggets = append(snap.Nuggets, w.nuggets...)
	snap.Zones = append(snap.Zones, w.zones...)
	if w.director != nil {
		snap.Run = &DirectorRecord{
			Stage: w.director.Stage(),
			Wave:  w.director.Wave(),
			Phase: w.director.Phase(),
		}
	}
	return snap
}
