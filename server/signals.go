package server

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/enercheck/compliance-server/services/zookeeper"
)

// TrapSignalsPosix captures POSIX-only signals.
func TrapSignalsPosix(z *zookeeper.ZKState, logger *zap.Logger) {
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGUSR1)

		for sig := range sigchan {
			switch sig {
			case syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGUSR1, syscall.SIGUSR2:
				logger.Info("prepare to die")
				// Drop out of zk first so that we stop getting new work
				zookeeper.ServiceStop(z, logger)
				// Let in-flight requests finish before we exit
				time.Sleep(time.Duration(2) * time.Second)
				logger.Info("dying")
				os.Exit(0)
			default:
				os.Exit(1)
			}
		}
	}()
}
