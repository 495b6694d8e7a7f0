package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/drops/internal/config"
	"github.com/Faultbox/drops/internal/sim"
)

// runner steps one world at a time on the calling goroutine. Rebuilt worlds
// arrive on reload and replace the running one between ticks.
type runner struct {
	log      *zap.Logger
	world    *sim.World
	maxTicks int // across reloads; 0 runs until ctx is done
	realtime bool
	report   time.Duration // simulated time between stats lines
	reload   <-chan *sim.World

	ticks int
}

func (r *runner) run(ctx context.Context) error {
	var pace <-chan time.Time
	if r.realtime {
		t := time.NewTicker(tickDuration(r.world.TickDt()))
		defer t.Stop()
		pace = t.C
	}
	nextReport := r.report.Seconds()

	for r.maxTicks == 0 || r.ticks < r.maxTicks {
		if pace != nil {
			select {
			case <-ctx.Done():
				return r.finish("interrupted")
			case w := <-r.reload:
				r.swap(w)
				nextReport = r.report.Seconds()
				continue
			case <-pace:
			}
		} else {
			select {
			case <-ctx.Done():
				return r.finish("interrupted")
			case w := <-r.reload:
				r.swap(w)
				nextReport = r.report.Seconds()
			default:
			}
		}

		r.world.Step()
		r.ticks++

		if r.report > 0 && r.world.Time() >= nextReport {
			r.log.Info("stats", r.world.Stats().Fields()...)
			nextReport += r.report.Seconds()
		}
	}
	return r.finish("tick limit reached")
}

func (r *runner) swap(w *sim.World) {
	r.log.Info("scenario reloaded",
		zap.Uint64("previous_frame", r.world.Frame()),
		zap.Int("drops", len(w.Drops())),
		zap.Int("enemies", len(w.Enemies())),
	)
	r.world = w
}

func (r *runner) finish(reason string) error {
	fields := append([]zap.Field{zap.String("reason", reason), zap.Int("ticks", r.ticks)},
		r.world.Stats().Fields()...)
	r.log.Info("simulation finished", fields...)
	for _, id := range r.world.Faults() {
		r.log.Warn("entity faulted", zap.String("entity", id), zap.Error(r.world.Fault(id)))
	}
	return nil
}

func tickDuration(dt float32) time.Duration {
	return time.Duration(float64(dt) * float64(time.Second))
}

// watchScenario rebuilds the world whenever one of files changes and hands
// it to out, replacing any world the runner has not picked up yet. A broken
// edit is logged and the running world is kept.
func watchScenario(ctx context.Context, path string, files []string, opts sim.Options, out chan *sim.World, log *zap.Logger) error {
	w, err := config.NewWatcher(files...)
	if err != nil {
		return fmt.Errorf("watching scenario: %w", err)
	}
	defer w.Close()
	log.Info("watching scenario", zap.Strings("files", files))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		case changed, ok := <-w.Events:
			if !ok {
				return nil
			}
			world, _, err := loadWorld(path, opts)
			if err != nil {
				log.Warn("reload rejected", zap.String("changed", changed), zap.Error(err))
				continue
			}
			select {
			case <-out:
			default:
			}
			out <- world
		}
	}
}
