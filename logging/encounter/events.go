package encounter

import (
	"context"

	"dust-and-lead/server/logging"
)

const (
	// EventWaveStarted is emitted when a wave activates and its threats spawn.
	EventWaveStarted logging.EventType = "encounter.wave_started"
	// EventWaveCleared is emitted when a wave reaches its clear threshold.
	EventWaveCleared logging.EventType = "encounter.wave_cleared"
	// EventStageAdvanced is emitted when stage progression moves phases.
	EventStageAdvanced logging.EventType = "encounter.stage_advanced"
	// EventSpawnRejected is emitted when a fodder spawn is skipped for budget.
	EventSpawnRejected logging.EventType = "encounter.spawn_rejected"
)

type WavePayload struct {
	Stage     int `json:"stage"`
	Wave      int `json:"wave"`
	Threats   int `json:"threats,omitempty"`
	Carryover int `json:"carryover,omitempty"`
}

func WaveStarted(ctx context.Context, pub logging.Publisher, tick uint64, stage, wave, threats, carryover int) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventWaveStarted,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: "director", Kind: logging.EntityKindWorld},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEncounter,
		Payload:  WavePayload{Stage: stage, Wave: wave, Threats: threats, Carryover: carryover},
	})
}

func WaveCleared(ctx context.Context, pub logging.Publisher, tick uint64, stage, wave int) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventWaveCleared,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: "director", Kind: logging.EntityKindWorld},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEncounter,
		Payload:  WavePayload{Stage: stage, Wave: wave},
	})
}

type StagePayload struct {
	Stage int    `json:"stage"`
	Phase string `json:"phase"`
}

func StageAdvanced(ctx context.Context, pub logging.Publisher, tick uint64, stage int, phase string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStageAdvanced,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: "director", Kind: logging.EntityKindWorld},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEncounter,
		Payload:  StagePayload{Stage: stage, Phase: phase},
	})
}

type SpawnRejectedPayload struct {
	EnemyType string  `json:"enemyType"`
	Budget    float64 `json:"budget"`
}

func SpawnRejected(ctx context.Context, pub logging.Publisher, tick uint64, enemyType string, budget float64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSpawnRejected,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: "director", Kind: logging.EntityKindWorld},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryEncounter,
		Payload:  SpawnRejectedPayload{EnemyType: enemyType, Budget: budget},
	})
}
