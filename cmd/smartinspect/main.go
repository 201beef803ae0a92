package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Eduard0Castro/smart-inspection/internal/app"
	"github.com/Eduard0Castro/smart-inspection/internal/dataset"
	"github.com/Eduard0Castro/smart-inspection/internal/dialogue"
	"github.com/Eduard0Castro/smart-inspection/internal/inspection"
	"github.com/Eduard0Castro/smart-inspection/internal/version"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "smartinspect",
	Short: "Smart Inspection - drone room inspection with a conversational assistant",
	Long: `smartinspect coordinates an autonomous drone room inspection with a
conversational assistant that controls status LEDs and reads the motion
sensor. Running it without a subcommand starts the interactive mode.`,
	RunE:          runChat,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "smartinspect.toml", "path to the TOML config file")
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// signalContext returns a context cancelled by Ctrl-C. Interruption is a
// clean exit path, not an error.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive assistant",
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := app.NewApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signalContext()
	defer stop()

	a.ConfigureDevices(ctx)

	orch := inspection.NewOrchestrator(a.Flight, a.Ranger, a.Logger, a.Config.InspectionCSVPath())
	engine := dialogue.NewEngine(dialogue.Params{
		Chat:          a.Chat,
		Inspector:     orch,
		LEDs:          a.LEDs,
		Motion:        a.Motion,
		MotionTimeout: a.MotionTimeout(),
		Logger:        a.Logger,
	})

	if err := engine.Run(ctx); err != nil {
		a.Logger.Error("interactive mode ended with an error", zap.Error(err))
		return err
	}
	return nil
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Run one drone inspection without the assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signalContext()
		defer stop()

		orch := inspection.NewOrchestrator(a.Flight, a.Ranger, a.Logger, a.Config.InspectionCSVPath())
		result, err := orch.Run(ctx)
		if err != nil {
			return fmt.Errorf("inspection failed: %w", err)
		}

		verdict := "PASSED"
		if !result.Passed {
			verdict = "FAILED"
		}
		fmt.Printf("Inspection %s: %d anomalous samples\n", verdict, result.AnomalyCount)
		return nil
	},
}

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Fly the inspection maneuver and append samples to the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signalContext()
		defer stop()

		recorder := dataset.NewRecorder(a.Flight, a.Ranger, a.Logger, a.Config.DatasetCSVPath())
		if _, err := recorder.Record(ctx); err != nil {
			return fmt.Errorf("dataset recording failed: %w", err)
		}
		fmt.Printf("Dataset updated: %s\n", a.Config.DatasetCSVPath())
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the motion sensor and LED snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.NewApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signalContext()
		defer stop()

		motion, err := a.Motion.ReadMotion(ctx, a.MotionTimeout())
		if err != nil {
			return fmt.Errorf("motion read failed: %w", err)
		}
		leds, err := a.LEDs.LEDs(ctx)
		if err != nil {
			return fmt.Errorf("led read failed: %w", err)
		}

		dialogue.RenderStatus(os.Stdout, motion, leds)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("smartinspect v" + version.Version)

		// Best effort; offline use is normal.
		if latest, err := version.CheckForUpdates(cmd.Context()); err == nil && latest != "" {
			fmt.Printf("A newer version is available: v%s\n", latest)
		}
	},
}

var completionCmd = &cobra.Command{
	Use:                   "completion [bash|zsh|fish|powershell]",
	Short:                 "Generate the autocompletion script for the specified shell",
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}
