package livedash

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// LocalSource reads host CPU, memory and load without any server
type LocalSource struct {
	now     func() time.Time
	percent func(ctx context.Context) (float64, error)
	memory  func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	loadAvg func(ctx context.Context) (*load.AvgStat, error)
}

func NewLocalSource() *LocalSource {
	return &LocalSource{
		now: time.Now,
		percent: func(ctx context.Context) (float64, error) {
			pct, err := cpu.PercentWithContext(ctx, 0, false)
			if err != nil {
				return 0, err
			}
			if len(pct) == 0 {
				return 0, fmt.Errorf("cpu percent: no readings")
			}
			return pct[0], nil
		},
		memory:  mem.VirtualMemoryWithContext,
		loadAvg: load.AvgWithContext,
	}
}

func (l *LocalSource) Name() string {
	return "localhost"
}

func (l *LocalSource) Check(ctx context.Context) error {
	_, err := l.FetchLatest(ctx)
	return err
}

func (l *LocalSource) FetchHistory(context.Context) ([]Snapshot, error) {
	return nil, nil
}

func (l *LocalSource) FetchLatest(ctx context.Context) (Snapshot, error) {
	pct, err := l.percent(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("cpu: %w", err)
	}
	vm, err := l.memory(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("memory: %w", err)
	}
	avg, err := l.loadAvg(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load: %w", err)
	}

	return Snapshot{
		Timestamp: l.now().UTC().Format(time.RFC3339),
		Metrics: []Metric{
			{Name: "CPU usage (%)", Value: round2(pct), ChartType: ChartLine},
			{Name: "Memory usage (mb)", Value: float64(vm.Used / 1024 / 1024), ChartType: ChartLine},
			{Name: "Load average 1m", Value: round2(avg.Load1), ChartType: ChartBar},
			{Name: "Memory used ratio", Value: round2(vm.UsedPercent / 100), ChartType: ChartDoughnut},
		},
	}, nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
