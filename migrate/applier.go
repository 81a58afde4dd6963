package migrate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/dynschema/database"
	"github.com/Konsultn-Engineering/dynschema/dialect"
)

// Applier executes operations against a database, stopping at the first
// failure.
type Applier struct {
	exec    database.Executor
	dialect dialect.Dialect
	logger  *zap.SugaredLogger
}

func NewApplier(exec database.Executor, d dialect.Dialect, logger *zap.SugaredLogger) *Applier {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Applier{exec: exec, dialect: d, logger: logger}
}

// Apply runs ops in order. When the executor is a database.Database the
// whole batch runs in one transaction.
func (a *Applier) Apply(ctx context.Context, ops []Op) error {
	if len(ops) == 0 {
		return nil
	}
	if db, ok := a.exec.(database.Database); ok {
		return db.WithinTx(ctx, func(tx database.Executor) error {
			return a.run(ctx, tx, ops)
		})
	}
	return a.run(ctx, a.exec, ops)
}

func (a *Applier) run(ctx context.Context, exec database.Executor, ops []Op) error {
	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return err
		}
		stmt := op.SQL(a.dialect)
		a.logger.Infow("applying operation", "step", i+1, "of", len(ops), "op", op.String())
		a.logger.Debugw("operation sql", "sql", stmt)
		if _, err := exec.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: step %d (%s): %w", i+1, op, err)
		}
	}
	return nil
}
