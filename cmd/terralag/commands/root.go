package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/terralag/terralag/internal/version"
	"github.com/terralag/terralag/pkg/engine"
	"github.com/terralag/terralag/pkg/hclscan"
	"github.com/terralag/terralag/pkg/report"
	"github.com/terralag/terralag/pkg/telemetry"
	"github.com/terralag/terralag/pkg/tui"
)

// Exit codes. The two extraction failures get their own codes so CI can
// tell "wrong directory" apart from "check failed".
const (
	exitGeneric       = 1
	exitNoLockFile    = 2
	exitNoConfigFiles = 3
)

var (
	cfgFile string
	config  engine.Config

	flagFormat       string
	flagOtelEndpoint string
	flagVerbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "terralag",
	Short: "How far behind are your Terraform providers?",
	Long: `terralag - provider release-note triage

Reads your dependency lock file, finds every release you are behind on,
and highlights the note lines that touch resource types you actually use.`,
	Version:       version.Current,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.Context())
	},
}

// Execute runs the CLI and maps run-level failures to exit codes.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	switch {
	case errors.Is(err, hclscan.ErrLockFileNotFound):
		os.Exit(exitNoLockFile)
	case errors.Is(err, hclscan.ErrNoConfigFiles):
		os.Exit(exitNoConfigFiles)
	default:
		os.Exit(exitGeneric)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.terralag.yaml)")
	rootCmd.PersistentFlags().StringVar(&config.Dir, "dir", ".", "Terraform project directory")
	rootCmd.PersistentFlags().StringVar(&config.LockPath, "lock-file", "", "Path to .terraform.lock.hcl (default <dir>/.terraform.lock.hcl)")
	rootCmd.PersistentFlags().StringVar(&config.Token, "token", "", "GitHub token for higher rate limits")
	rootCmd.PersistentFlags().BoolVar(&config.NoPause, "show-all", false, "Show all providers without pausing")
	rootCmd.PersistentFlags().BoolVar(&config.CapsStyle, "caps", false, "Mark relevant lines with a prefix and caps instead of color")
	rootCmd.PersistentFlags().IntVar(&config.MaxConcurrency, "concurrency", 4, "Providers checked in parallel")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")

	// Hidden Flags
	rootCmd.PersistentFlags().StringVar(&flagOtelEndpoint, "otel-endpoint", "", "OTLP trace collector endpoint")
	rootCmd.PersistentFlags().MarkHidden("otel-endpoint")

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderHelp(cmd)
	})
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.SetConfigFile(filepath.Join(home, ".terralag.yaml"))
			viper.SetConfigType("yaml")
		}
	}
	viper.SetEnvPrefix("terralag")
	viper.AutomaticEnv()
	viper.ReadInConfig()

	// Flags beat config file beats env; the token is the only secret
	// and usually arrives via TERRALAG_TOKEN.
	if config.Token == "" {
		config.Token = viper.GetString("token")
	}
}

func runCheck(ctx context.Context) error {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	shutdown, err := telemetry.Init(ctx, version.AppName, version.Current, flagOtelEndpoint)
	if err != nil {
		logger.Warn("Telemetry init failed, continuing without traces", "error", err)
	} else {
		defer shutdown(context.Background())
	}

	if config.LockPath == "" {
		config.LockPath = filepath.Join(config.Dir, ".terraform.lock.hcl")
	}
	config.Logger = logger

	eng := engine.New(config)
	res, err := eng.Run(ctx)
	if err != nil {
		return err
	}

	switch flagFormat {
	case "json":
		return report.WriteJSON(os.Stdout, res)
	case "yaml":
		return report.WriteYAML(os.Stdout, res)
	case "text":
		renderText(eng, res)
		return nil
	default:
		return fmt.Errorf("unknown format %q", flagFormat)
	}
}

func renderText(eng *engine.Engine, res *engine.Result) {
	console := report.NewConsole(os.Stdout, eng.StyleMode())
	console.Header(res)

	for i, p := range res.Providers {
		console.Provider(p)

		if config.NoPause || i == len(res.Providers)-1 {
			continue
		}
		proceed, err := tui.WaitForKey()
		if err != nil {
			// Not a terminal; just keep printing.
			continue
		}
		if !proceed {
			break
		}
	}

	console.Summary(res)
}

func renderHelp(cmd *cobra.Command) {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00FF99")).
		MarginBottom(1)

	flagStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA"))

	fmt.Println(titleStyle.Render(fmt.Sprintf("TERRALAG %s", version.Current)))
	fmt.Println("Release-note triage for pinned Terraform providers.")

	fmt.Println(titleStyle.Render("USAGE"))
	fmt.Printf("  %s\n\n", cmd.UseLine())

	fmt.Println(titleStyle.Render("COMMANDS"))
	for _, c := range cmd.Commands() {
		if c.IsAvailableCommand() {
			fmt.Printf("  %-12s %s\n", c.Name(), c.Short)
		}
	}
	fmt.Println("")

	fmt.Println(titleStyle.Render("FLAGS"))
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		output := fmt.Sprintf("  --%-15s %s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
			output += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		fmt.Println(flagStyle.Render(output))
	})
	fmt.Println("")
}
