package main

import (
	"context"
	stdos "os"

	"github.com/akuity/redeployer/internal/logging"
	"github.com/akuity/redeployer/internal/os"

	_ "time/tzdata"
)

func main() {
	ctx, cancel := os.NotifyOnShutdown(context.Background())
	err := Execute(ctx)
	cancel()
	if err != nil {
		logging.LoggerFromContext(ctx).Error(err, "")
		stdos.Exit(1)
	}
}
