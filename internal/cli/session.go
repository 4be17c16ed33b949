package cli

import (
	"fmt"
	"os"

	"github.com/agentx-labs/emuscan/internal/config"
	"github.com/agentx-labs/emuscan/internal/discovery"
	"github.com/agentx-labs/emuscan/internal/hostenv"
	"github.com/agentx-labs/emuscan/internal/logging"
	"github.com/agentx-labs/emuscan/internal/platform"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// session is everything a discovery command needs, resolved once from
// flags, the config file and the host environment.
type session struct {
	cfg      *config.Config
	log      zerolog.Logger
	registry *discovery.Registry
	selector discovery.Selector
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	env := hostenv.Current()

	logCfg := logging.DefaultConfig(logging.ProfileRuntime)
	for _, raw := range []string{cfg.LogLevel, logLevelFlag} {
		if raw == "" {
			continue
		}
		lvl, ok := logging.ParseLevel(raw)
		if !ok {
			return nil, fmt.Errorf("unknown log level %q", raw)
		}
		logCfg.Level = lvl
	}
	log := logging.New(os.Stderr, logCfg)

	dirs := resolveDirectories(discoveryDirs, cfg.DiscoveryDirs, env)

	probe := cfg.Probe
	if cmd.Flags().Changed("probe") {
		probe = probeFlag
	}

	preferred := preferredSerial(cfg.DefaultSerial, env)

	log.Debug().Strs("dirs", dirs).Bool("probe", probe).Msg("discovery configured")

	return &session{
		cfg:      cfg,
		log:      log,
		registry: discovery.NewRegistry(dirs, newChecker(probe, cfg), log),
		selector: discovery.Selector{Preferred: preferred},
	}, nil
}

// resolveDirectories picks the first non-empty source: flags, config, then
// the host policy.
func resolveDirectories(flagDirs, configDirs []string, env hostenv.Env) []string {
	if len(flagDirs) > 0 {
		return flagDirs
	}
	if len(configDirs) > 0 {
		return configDirs
	}
	return hostenv.DiscoveryDirectories(env)
}

// preferredSerial lets an exported ANDROID_SERIAL override the config file,
// the same way adb treats it.
func preferredSerial(configured string, env hostenv.Env) string {
	if serial := hostenv.PreferredSerial(env); serial != "" {
		return serial
	}
	return configured
}

func newChecker(probe bool, cfg *config.Config) discovery.Checker {
	process := discovery.ProcessChecker{Exists: platform.ProcessExists}
	if !probe {
		return process
	}
	return discovery.ProbeChecker{Process: process, Timeout: cfg.ProbeTimeout}
}
