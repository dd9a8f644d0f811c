package usecase

import (
	"context"
	"fmt"
	"strings"

	"ecogw/internal/registers"
	applogger "ecogw/pkg/logger"
)

// DebugJob dumps the register table to the debug log.
type DebugJob struct {
	table  *registers.Table
	logger *applogger.Logger
}

func NewDebugJob(table *registers.Table, logger *applogger.Logger) *DebugJob {
	return &DebugJob{table: table, logger: logger}
}

func (j *DebugJob) Name() string { return "debug" }

func (j *DebugJob) Run(context.Context) {
	snap := j.table.Snapshot()
	for _, b := range j.table.Blocks() {
		j.logger.Debug("register block",
			applogger.String("block", b.Name),
			applogger.Int("start", int(b.Start)),
			applogger.String("values", dumpBlock(b, snap)),
		)
	}
}

// dumpBlock renders "addr=value" pairs, "?" for unknown slots.
func dumpBlock(b registers.Block, snap []registers.Entry) string {
	var sb strings.Builder
	end := int(b.Start) + b.Size
	for _, e := range snap {
		if int(e.Address) < int(b.Start) || int(e.Address) >= end {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		if e.Known {
			fmt.Fprintf(&sb, "%d=%d", e.Address, e.Value)
		} else {
			fmt.Fprintf(&sb, "%d=?", e.Address)
		}
	}
	return sb.String()
}
