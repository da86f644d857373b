package game

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/tankfield/tanks/internal/game"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// simMetrics counts gameplay events. Without a configured provider the
// global meter is a no-op.
type simMetrics struct {
	ticks     metric.Int64Counter
	shots     metric.Int64Counter
	hits      metric.Int64Counter
	damage    metric.Int64Counter
	destroyed metric.Int64Counter
}

func newSimMetrics() *simMetrics {
	m := meter()
	return &simMetrics{
		ticks:     counter(m, "tanks.sim.ticks", "Simulation ticks advanced"),
		shots:     counter(m, "tanks.sim.shots", "Shells fired"),
		hits:      counter(m, "tanks.sim.hits", "Shells that damaged a tank"),
		damage:    counter(m, "tanks.sim.damage", "Damage dealt to tanks"),
		destroyed: counter(m, "tanks.sim.destroyed", "Tanks destroyed"),
	}
}

func counter(m metric.Meter, name, desc string) metric.Int64Counter {
	c, err := m.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

func (sm *simMetrics) tick() {
	sm.ticks.Add(context.Background(), 1)
}

func (sm *simMetrics) record(ev Event) {
	ctx := context.Background()
	team := metric.WithAttributes(attribute.String("team", ev.Team.String()))
	switch ev.Kind {
	case EventShot:
		sm.shots.Add(ctx, 1, team)
	case EventTankHit:
		sm.hits.Add(ctx, 1, team)
		sm.damage.Add(ctx, int64(ev.Amount), team)
	case EventTankDestroyed:
		sm.destroyed.Add(ctx, 1, team)
	}
}
