package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	logAdapter "github.com/bft-labs/rgbloop/internal/adapters/log"
	"github.com/bft-labs/rgbloop/internal/cliconfig"
	"github.com/bft-labs/rgbloop/pkg/rgbloop"
	"github.com/bft-labs/rgbloop/plugins/configwatcher"
	"github.com/bft-labs/rgbloop/plugins/profiler"
)

const helpDescription = `
Drive the RGB LED board over TCP.

rgbloop opens one connection to the board and writes the bytes of a fixed
sequence to it, one byte per interval, round-robin, until stopped. The
default sequence "rgb" cycles the LED through red, green and blue.

There is no retry: a failed connect or a broken connection exits non-zero.
Configure via file ($HOME/.rgbloop/config.toml), RGBLOOP_* env, or flags.
`

var exampleUsage = strings.TrimSpace(`
  rgbloop --host 192.168.2.94 --port 9000
  rgbloop --host 127.0.0.1 --sequence hex:000102 --interval 500ms --count 6
  rgbloop --config ./rgbloop.toml --watch-config
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:           "rgbloop",
		Short:         "Cycle a byte sequence to the RGB LED board over TCP",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Config file first, then env, then flags (via the changed map).
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			loadedFile := ""
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
				loadedFile = cfgFile
			} else if cfgPath != "" {
				return fmt.Errorf("config file %s not found", cfgPath)
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			cliconfig.SetLogLevel(cfg.LogLevel)
			log.Info().Interface("config", cfg).Str("file", loadedFile).Msg("configuration")

			opts := []rgbloop.Option{
				rgbloop.WithLogger(logAdapter.NewZerologAdapterWithLogger(log)),
			}
			if cfg.WatchConfig {
				if loadedFile == "" {
					log.Warn().Msg("--watch-config set but no config file loaded")
				} else {
					opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{Path: loadedFile}))
				}
			}
			if cfg.ProfileAddr != "" {
				opts = append(opts, profiler.WithProfiler(profiler.Config{Addr: cfg.ProfileAddr}))
			}

			loop, err := rgbloop.New(cfg.Library(), opts...)
			if err != nil {
				return fmt.Errorf("create rgbloop: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			if err := loop.Start(ctx); err != nil {
				return fmt.Errorf("start rgbloop: %w", err)
			}

			select {
			case sig := <-sigCh:
				log.Info().Str("signal", sig.String()).Msg("received signal, stopping...")
				if err := loop.Stop(); err != nil {
					return fmt.Errorf("stop rgbloop: %w", err)
				}
				return nil
			case <-loop.Done():
				return loop.Wait()
			}
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.rgbloop/config.toml)")
	root.Flags().StringVar(&cfg.Host, "host", cfg.Host, "receiver host")
	root.Flags().IntVar(&cfg.Port, "port", cfg.Port, "receiver TCP port")
	root.Flags().DurationVar(&cfg.Interval, "interval", cfg.Interval, "pause after each byte")
	root.Flags().StringVar(&cfg.Sequence, "sequence", cfg.Sequence, `bytes to cycle; "hex:000102" for raw values`)
	root.Flags().DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "connect timeout")
	root.Flags().DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "per-write timeout (0 disables)")
	root.Flags().IntVar(&cfg.Count, "count", cfg.Count, "stop after this many bytes (0 = forever)")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload interval and sequence when the config file changes")
	root.Flags().StringVar(&cfg.ProfileAddr, "profile-addr", cfg.ProfileAddr, "serve fgprof on this address (debug)")
	if err := root.Flags().MarkHidden("profile-addr"); err != nil {
		log.Info().Err(err).Msg("failed to hide profile-addr flag")
	}

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("rgbloop")
		os.Exit(1)
	}
}
