// cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/typedrat/phosphor/appconfig"
	"github.com/typedrat/phosphor/beam"
	"github.com/typedrat/phosphor/beamchannel"
	"github.com/typedrat/phosphor/frame"
	"github.com/typedrat/phosphor/phosphor"
)

var (
	logLevel       string
	configPath     string
	phosphorDBPath string
	phosphorName   string
	sampleRate     float64
	width, height  int
	ringCapacity   int
	runDuration    time.Duration
	listenAddr     string
	advertise      bool
	advertiseName  string
)

var rootCmd = &cobra.Command{
	Use:   "phosphor",
	Short: "CRT phosphor display simulator",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the phosphor simulation headlessly",
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging()

		cfg := appconfig.Default()
		if configPath != "" {
			loaded, err := appconfig.Load(configPath)
			if err != nil {
				logrus.Fatalf("loading render config: %v", err)
			}
			cfg = loaded
		}

		db, err := phosphor.LoadDatabaseFile(phosphorDBPath)
		if err != nil {
			logrus.Fatalf("loading phosphor database: %v", err)
		}
		designation := phosphorName
		if designation == "" {
			designation = cfg.DefaultPhosphor
		}
		p, err := findPhosphor(db, designation)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		rate := sampleRate
		if rate == 0 {
			rate = cfg.DefaultSampleRate
		}

		var source beam.Source
		if listenAddr != "" {
			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				logrus.Fatalf("external beam listener: %v", err)
			}
			defer ln.Close()

			if advertise {
				_, portStr, err := net.SplitHostPort(ln.Addr().String())
				if err != nil {
					logrus.Fatalf("external beam listener: %v", err)
				}
				port, err := strconv.Atoi(portStr)
				if err != nil {
					logrus.Fatalf("external beam listener: %v", err)
				}
				name := advertiseName
				if name == "" {
					name = "phosphor"
				}
				cancelAdvertise, err := beam.AdvertiseExternalListener(context.Background(), name, port)
				if err != nil {
					logrus.Fatalf("advertising external beam listener: %v", err)
				}
				defer cancelAdvertise()
				logrus.Infof("advertising external beam listener %q on port %d", name, port)
			}

			logrus.Infof("waiting for external beam protocol connection on %s", ln.Addr())
			conn, err := ln.Accept()
			if err != nil {
				logrus.Fatalf("external beam listener: %v", err)
			}
			defer conn.Close()
			source = beam.NewExternalSource(conn)
		} else {
			source = beam.NewOscilloscopeSource(beam.DefaultChannelConfig(), beam.DefaultChannelConfig(), rate)
		}

		producerHalf, consumerHalf := beamchannel.New(ringCapacity)
		bp := beam.NewProducer(producerHalf, source, rate, beam.Seed(1))

		go bp.Run()
		defer func() { bp.Commands() <- beam.Command{Kind: beam.CmdShutdown} }()

		presenter := frame.NewNullPresenter(width, height)
		orch := frame.NewOrchestrator(p, width, height, consumerHalf, presenter)
		orch.SampleRate = rate
		orch.BeamParams = cfg.BeamParams()
		orch.ScatterParams = cfg.ScatterParams()
		compositeParams, err := cfg.CompositeParams()
		if err != nil {
			logrus.Fatalf("render config: %v", err)
		}
		orch.CompositeParams = compositeParams

		logrus.Infof("running phosphor %s at %dx%d, sample rate %.0f Hz", p.Designation, width, height, rate)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		var deadline <-chan time.Time
		if runDuration > 0 {
			deadline = time.After(runDuration)
		}

		ticker := time.NewTicker(orch.FrameInterval)
		defer ticker.Stop()

		frames := 0
		for {
			select {
			case <-sigCh:
				logrus.Infof("interrupted after %d frames", frames)
				return
			case <-deadline:
				logrus.Infof("completed after %d frames", frames)
				return
			case <-ticker.C:
				if err := orch.RenderFrame(); err != nil {
					logrus.Fatalf("fatal frame error: %v", err)
				}
				frames++
			}
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate-phosphors <path>",
	Short: "Load and validate a phosphor TOML database",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging()

		db, err := phosphor.LoadDatabaseFile(args[0])
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		for _, p := range db {
			groups := p.EmissionGroups()
			layers := 0
			for _, g := range groups {
				layers += g.Classify().AccumLayers()
			}
			fmt.Printf("%-8s %-20s dual_layer=%-5v groups=%d layers=%d\n",
				p.Designation, p.Category, p.IsDualLayer, len(groups), layers)
		}
		logrus.Infof("validated %d phosphor(s)", len(db))
	},
}

func findPhosphor(db []phosphor.Phosphor, designation string) (phosphor.Phosphor, error) {
	for _, p := range db {
		if p.Designation == designation {
			return p, nil
		}
	}
	return phosphor.Phosphor{}, fmt.Errorf("phosphor %q not found in database", designation)
}

// configureLogging resolves the log level with flag precedence over the
// PHOSPHOR_LOG_LEVEL environment variable.
func configureLogging() {
	level := logLevel
	if level == "" {
		level = os.Getenv("PHOSPHOR_LOG_LEVEL")
	}
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Fatalf("invalid log level: %s", level)
	}
	logrus.SetLevel(parsed)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides PHOSPHOR_LOG_LEVEL")

	runCmd.Flags().StringVar(&configPath, "config", "", "path to an app-level render config YAML file")
	runCmd.Flags().StringVar(&phosphorDBPath, "phosphor-db", "phosphors.toml", "path to the phosphor TOML database")
	runCmd.Flags().StringVar(&phosphorName, "phosphor", "", "phosphor designation to run (defaults to the config's default_phosphor)")
	runCmd.Flags().Float64Var(&sampleRate, "sample-rate", 0, "beam sample rate in Hz (defaults to the config's default_sample_rate)")
	runCmd.Flags().IntVar(&width, "width", 512, "internal render width in pixels")
	runCmd.Flags().IntVar(&height, "height", 512, "internal render height in pixels")
	runCmd.Flags().IntVar(&ringCapacity, "ring-capacity", 1<<16, "beam sample ring buffer capacity")
	runCmd.Flags().DurationVar(&runDuration, "duration", 0, "run for this long then exit (0 = run until interrupted)")
	runCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address for the external beam protocol (e.g. :9000); when set, replaces the built-in oscilloscope source")
	runCmd.Flags().BoolVar(&advertise, "advertise", false, "advertise the --listen external beam endpoint over mDNS/DNS-SD")
	runCmd.Flags().StringVar(&advertiseName, "advertise-name", "", "mDNS instance name to advertise as (defaults to \"phosphor\")")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}
