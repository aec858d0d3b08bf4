package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/halfstep/midi2cv/api"
	"github.com/halfstep/midi2cv/constants"
	"github.com/halfstep/midi2cv/output"
	"github.com/halfstep/midi2cv/pipeline"
	"github.com/spf13/cobra"
)

var (
	flagPort    string
	flagStdin   bool
	flagConsole bool
	flagSerial  string
	flagBaud    int
	flagListen  string
	flagDebug   bool
)

func init() {
	runCmd.Flags().StringVar(&flagPort, "port", "", "MIDI input port name (default: first available)")
	runCmd.Flags().BoolVar(&flagStdin, "stdin", false, "read framed message units from stdin instead of a MIDI port")
	runCmd.Flags().BoolVar(&flagConsole, "console", false, "log output values instead of driving the serial adapter")
	runCmd.Flags().StringVar(&flagSerial, "serial", constants.GetSerialDevice(), "serial device of the CV/gate adapter")
	runCmd.Flags().IntVar(&flagBaud, "baud", constants.DefaultBaudRate, "serial baud rate")
	runCmd.Flags().StringVar(&flagListen, "listen", constants.GetListenAddr(), "bind address of the config HTTP surface")
	runCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the voicing pipeline",
	Long:  `Run the voicing pipeline: MIDI in, control voltage and gate out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline()
	},
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runPipeline() error {
	log := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cv output.VoltageWriter
	var gate output.GateWriter
	if flagConsole {
		console := output.NewConsole(output.DefaultDAC(), log)
		cv, gate = console, console
	} else {
		port, err := output.OpenPort(flagSerial, flagBaud, output.DefaultDAC(), log)
		if err != nil {
			return err
		}
		defer port.Close()
		cv, gate = port, port
	}

	pl := pipeline.New(pipeline.Options{}, cv, gate, log)

	srv := api.NewServer(pl.Priority, pl.Cleanup, pl.PortamentoTime,
		pl.AdvancePriority, pl.AdvanceCleanup, log)
	go func() {
		if err := srv.ListenAndServe(ctx, flagListen); err != nil {
			log.Error("config surface failed", "err", err)
		}
	}()

	in := pl.Ingest()
	if flagStdin {
		go func() {
			defer close(pl.Events)
			if err := in.ReadFrom(ctx, os.Stdin); err != nil && ctx.Err() == nil {
				log.Error("stdin read failed", "err", err)
			}
		}()
	} else {
		stopListening, err := in.Listen(flagPort)
		if err != nil {
			return err
		}
		defer stopListening()
	}

	return pl.Run(ctx)
}
