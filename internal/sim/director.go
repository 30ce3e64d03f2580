package sim

import (
	"context"
	"math"
	"math/rand"

	"dust-and-lead/server/internal/content"
	"dust-and-lead/server/internal/ecs"
	logencounter "dust-and-lead/server/logging/encounter"
)

type directorPhase uint8

const (
	phasePreWave directorPhase = iota
	phaseWaveActive
	phaseClearing
	phaseCamp
	phaseRunComplete
)

func (p directorPhase) String() string {
	switch p {
	case phasePreWave:
		return "preWave"
	case phaseWaveActive:
		return "waveActive"
	case phaseClearing:
		return "clearing"
	case phaseCamp:
		return "camp"
	case phaseRunComplete:
		return "runComplete"
	}
	return "unknown"
}

// Director drives wave spawning and stage progression. Each wave gets a
// globally unique sequence number; enemies remember the sequence they
// spawned under so kills of carried-over threats never credit the current
// wave's clear counter.
type Director struct {
	run   content.RunDef
	stage int
	wave  int
	phase directorPhase
	timer int

	waveSeq        int
	threatsSpawned int
	threatKills    int
	carryoverKills int

	tokens float64
	spent  float64

	campDone bool
	rng      *rand.Rand
}

func newDirector(run content.RunDef) *Director {
	d := &Director{run: run, phase: phasePreWave, waveSeq: 1}
	if len(run.Stages) > 0 && len(run.Stages[0].Waves) > 0 {
		d.timer = run.Stages[0].Waves[0].PreDelayTicks
	}
	return d
}

func (d *Director) Stage() int          { return d.stage }
func (d *Director) Wave() int           { return d.wave }
func (d *Director) Phase() string       { return d.phase.String() }
func (d *Director) RunComplete() bool   { return d.phase == phaseRunComplete }
func (d *Director) ThreatKills() int    { return d.threatKills }
func (d *Director) CarryoverKills() int { return d.carryoverKills }
func (d *Director) BudgetSpent() float64 {
	return d.spent
}

func (d *Director) currentStage() *content.StageDef {
	if d.stage >= len(d.run.Stages) {
		return nil
	}
	return &d.run.Stages[d.stage]
}

func (d *Director) currentWave() *content.WaveDef {
	stage := d.currentStage()
	if stage == nil || d.wave >= len(stage.Waves) {
		return nil
	}
	return &stage.Waves[d.wave]
}

// SystemDirector is the per-tick entry point registered in the pipeline.
func SystemDirector(w *World, dt float64) {
	if w.director != nil {
		w.director.step(w, dt)
	}
}

func (d *Director) step(w *World, dt float64) {
	if d.rng == nil {
		d.rng = w.subsystemRNG("director")
	}

	switch d.phase {
	case phasePreWave:
		d.timer--
		if d.timer <= 0 {
			d.activateWave(w)
		}
	case phaseWaveActive:
		d.spawnFodder(w, dt)
		d.evaluateClear(w)
	case phaseClearing:
		d.timer--
		if d.timer <= 0 {
			d.finishClearing(w)
		}
	case phaseCamp:
		if d.campDone {
			d.campDone = false
			d.advanceStage(w)
		}
	case phaseRunComplete:
	}
}

// SignalCampComplete is the external gate out of the camp phase; the
// simulation never decides on its own when the players are done resting.
func (d *Director) SignalCampComplete() {
	if d != nil && d.phase == phaseCamp {
		d.campDone = true
	}
}

func (d *Director) activateWave(w *World) {
	wave := d.currentWave()
	if wave == nil {
		d.enterClearing(w)
		return
	}

	d.phase = phaseWaveActive
	d.threatsSpawned = 0
	d.threatKills = 0
	d.tokens = 0
	d.spent = 0

	carryover := d.countCarryoverThreats(w)

	for _, threat := range wave.Threats {
		for i := 0; i < threat.Count; i++ {
			if d.spawnDirected(w, threat.Type) != ecs.None {
				d.threatsSpawned++
			}
		}
	}

	// Opening burst: half the alive cap, budget permitting.
	burst := wave.AliveCap / 2
	for i := 0; i < burst; i++ {
		if !d.trySpawnFodderOnce(w, wave) {
			break
		}
	}

	logencounter.WaveStarted(context.Background(), w.publisher, w.tick, d.stage, d.wave, d.threatsSpawned, carryover)
}

// spawnFodder runs the token bucket. Unaffordable picks fall back to the
// cheapest affordable pool entry; an empty affordable set skips the tick.
func (d *Director) spawnFodder(w *World, dt float64) {
	wave := d.currentWave()
	if wave == nil || wave.SpawnPerSecond <= 0 {
		return
	}
	d.tokens += wave.SpawnPerSecond * dt
	for d.tokens >= 1 {
		d.tokens--
		d.trySpawnFodderOnce(w, wave)
	}
}

func (d *Director) trySpawnFodderOnce(w *World, wave *content.WaveDef) bool {
	if len(wave.FodderPool) == 0 {
		return false
	}
	if wave.AliveCap > 0 && d.countWaveFodder(w) >= wave.AliveCap {
		return false
	}

	remaining := wave.Budget - d.spent
	pick := d.pickFodderType(w, wave, remaining)
	if pick == "" {
		return false
	}
	def := w.catalog.Enemies[pick]
	if d.spawnDirected(w, pick) == ecs.None {
		return false
	}
	d.spent += def.Cost
	return true
}

func (d *Director) pickFodderType(w *World, wave *content.WaveDef, remaining float64) string {
	total := 0.0
	for _, entry := range wave.FodderPool {
		total += entry.Weight
	}
	if total <= 0 {
		return ""
	}

	roll := d.rng.Float64() * total
	picked := wave.FodderPool[len(wave.FodderPool)-1].Type
	for _, entry := range wave.FodderPool {
		roll -= entry.Weight
		if roll < 0 {
			picked = entry.Type
			break
		}
	}

	if def, ok := w.catalog.Enemies[picked]; ok && def.Cost <= remaining {
		return picked
	}

	// Scan for the cheapest affordable type before giving up this tick.
	cheapest := ""
	cheapestCost := math.Inf(1)
	for _, entry := range wave.FodderPool {
		def, ok := w.catalog.Enemies[entry.Type]
		if !ok || def.Cost > remaining {
			continue
		}
		if def.Cost < cheapestCost {
			cheapest = entry.Type
			cheapestCost = def.Cost
		}
	}
	if cheapest == "" {
		logencounter.SpawnRejected(context.Background(), w.publisher, w.tick, picked, remaining)
	}
	return cheapest
}

func (d *Director) spawnDirected(w *World, typeName string) ecs.Entity {
	x, y := d.pickSpawnPosition(w)
	e, err := w.SpawnEnemy(typeName, x, y)
	if err != nil {
		return ecs.None
	}
	if ai := w.Enemies.Get(e); ai != nil {
		ai.Wave = d.waveSeq
	}
	return e
}

func (d *Director) countWaveFodder(w *World) int {
	count := 0
	w.EachEnemy(func(e ecs.Entity, ai *EnemyAI) {
		if ai.Wave != d.waveSeq {
			return
		}
		if def, ok := w.catalog.Enemies[ai.Type]; ok && def.Class == content.ClassFodder {
			count++
		}
	})
	return count
}

func (d *Director) countCarryoverThreats(w *World) int {
	count := 0
	w.EachEnemy(func(e ecs.Entity, ai *EnemyAI) {
		if ai.Wave >= d.waveSeq || ai.Wave < 0 {
			return
		}
		if def, ok := w.catalog.Enemies[ai.Type]; ok && def.Class != content.ClassFodder {
			count++
		}
	})
	return count
}

// NoteEnemyKilled is called by the death system for every enemy defeat.
func (d *Director) NoteEnemyKilled(w *World, _ ecs.Entity, ai *EnemyAI) {
	if d.phase != phaseWaveActive || ai == nil {
		return
	}
	def, ok := w.catalog.Enemies[ai.Type]
	if !ok || def.Class == content.ClassFodder {
		return
	}
	switch {
	case ai.Wave == d.waveSeq:
		d.threatKills++
	case ai.Wave >= 0:
		d.carryoverKills++
	}
}

func (d *Director) evaluateClear(w *World) {
	wave := d.currentWave()
	if wave == nil {
		d.enterClearing(w)
		return
	}
	needed := int(math.Ceil(float64(d.threatsSpawned) * wave.ClearRatio))
	if d.threatKills < needed {
		return
	}

	logencounter.WaveCleared(context.Background(), w.publisher, w.tick, d.stage, d.wave)
	d.waveSeq++

	stage := d.currentStage()
	if stage != nil && d.wave+1 < len(stage.Waves) {
		d.wave++
		d.phase = phasePreWave
		d.timer = stage.Waves[d.wave].PreDelayTicks
		return
	}
	d.enterClearing(w)
}

// enterClearing tears down the battlefield: enemies, bullets, and transient
// hazards go away and the spatial index restarts empty.
func (d *Director) enterClearing(w *World) {
	stage := d.currentStage()
	ticks := 0
	if stage != nil {
		ticks = stage.ClearingTicks
	}
	d.phase = phaseClearing
	d.timer = ticks

	var doomed []ecs.Entity
	for _, e := range w.liveEntities() {
		if w.Enemies.Has(e) || w.Bullets.Has(e) {
			doomed = append(doomed, e)
		}
	}
	for _, e := range doomed {
		w.DestroyEntity(e)
	}
	w.zones = w.zones[:0]
	w.charges = w.charges[:0]
	w.grid.Clear()

	logencounter.StageAdvanced(context.Background(), w.publisher, w.tick, d.stage, d.phase.String())
	if d.timer <= 0 {
		d.finishClearing(w)
	}
}

func (d *Director) finishClearing(w *World) {
	stage := d.currentStage()
	if stage != nil && stage.Camp {
		d.phase = phaseCamp
		for _, e := range w.PlayersOrdered() {
			if h := w.Healths.Get(e); h != nil {
				h.Current = h.Max
			}
			if p := w.Players.Get(e); p != nil && p.Dead {
				w.RespawnPlayer(e)
			}
		}
		logencounter.StageAdvanced(context.Background(), w.publisher, w.tick, d.stage, d.phase.String())
		return
	}
	d.advanceStage(w)
}

func (d *Director) advanceStage(w *World) {
	d.stage++
	d.wave = 0
	if d.stage >= len(d.run.Stages) {
		d.phase = phaseRunComplete
		logencounter.StageAdvanced(context.Background(), w.publisher, w.tick, d.stage, d.phase.String())
		return
	}
	d.phase = phasePreWave
	stage := d.currentStage()
	if len(stage.Waves) > 0 {
		d.timer = stage.Waves[0].PreDelayTicks
	}
	logencounter.StageAdvanced(context.Background(), w.publisher, w.tick, d.stage, d.phase.String())
}
