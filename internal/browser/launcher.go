package browser

import (
	"log/slog"

	"github.com/AhirraoYash/BuzzBuilder-build-buzz-automatically/internal/config"
)

// NewLauncher picks the replay driver when snapshot pages are configured and
// Chrome otherwise. replay reports whether the snapshot driver was chosen.
func NewLauncher(cfg config.ScraperConfig, logger *slog.Logger) (launcher Launcher, replay bool, err error) {
	paths, err := SnapshotPaths(cfg.SnapshotPath)
	if err != nil {
		return nil, false, err
	}
	if len(paths) > 0 {
		logger.Info("replaying saved feed pages", "pages", len(paths))
		return SnapshotLauncher{Paths: paths}, true, nil
	}

	return ChromeLauncher{
		Options: ChromeOptions{
			Headless:  cfg.Headless,
			NoSandbox: cfg.NoSandbox,
			ExecPath:  cfg.ChromePath,
		},
		Logger: logger,
	}, false, nil
}
