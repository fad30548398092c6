package cli

import (
	"context"
	"log/slog"

	"github.com/roach88/revaudit/internal/check"
	"github.com/roach88/revaudit/internal/config"
	"github.com/roach88/revaudit/internal/store"
)

// openEnv loads the configuration, connects to the database and links the
// table chain. The returned close function releases the connection.
func openEnv(ctx context.Context, path string, log *slog.Logger) (*check.Env, func(), error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	log.Debug("opening database", "driver", cfg.Database.Driver)
	st, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, log)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	closeFn := func() {
		if err := st.Close(); err != nil {
			log.Error("error closing database", "error", err)
		}
	}

	env, err := check.NewEnv(st, cfg, log)
	if err != nil {
		closeFn()
		return nil, nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return env, closeFn, nil
}

func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
