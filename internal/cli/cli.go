// Package cli implements the im2col command line tool.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/born-ml/im2col/internal/envconfig"
	"github.com/born-ml/im2col/internal/im2col"
	"github.com/born-ml/im2col/internal/parallel"
)

// Version is reported by the version command.
var Version = "v0.1.0-dev"

func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "im2col",
		Short:         "Inspect and verify image-to-column layout transforms",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: envconfig.LogLevel(),
			})
			slog.SetDefault(slog.New(handler))
		},
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Print(cmd.UsageString())
		},
	}

	envVars := envconfig.AsMap()
	for _, cmd := range []*cobra.Command{
		newGeometryCmd(),
		newSpreadCmd(),
		newCoverageCmd(),
		newCheckCmd(),
	} {
		switch cmd.Name() {
		case "check":
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["IM2COL_WORKERS"],
				envVars["IM2COL_SEQUENTIAL"],
				envVars["IM2COL_DEBUG"],
			})
		default:
			appendEnvDocs(cmd, []envconfig.EnvVar{envVars["IM2COL_DEBUG"]})
		}
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "im2col version %s\n", Version)
		},
	}
}

// addGeometryFlags registers the window flags shared by every subcommand.
// The per-axis flags override --kernel, --pad and --stride when set.
func addGeometryFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntP("channels", "c", 1, "Image channels")
	f.IntP("height", "H", 4, "Image height")
	f.IntP("width", "W", 4, "Image width")
	f.IntP("kernel", "k", 3, "Kernel size (both axes)")
	f.IntP("pad", "p", 1, "Zero padding (both axes)")
	f.IntP("stride", "s", 1, "Stride (both axes)")
	f.Int("kernel-h", 0, "Kernel height")
	f.Int("kernel-w", 0, "Kernel width")
	f.Int("pad-h", 0, "Padding above and below")
	f.Int("pad-w", 0, "Padding left and right")
	f.Int("stride-h", 0, "Vertical stride")
	f.Int("stride-w", 0, "Horizontal stride")
}

// geometryFromFlags reads the flags added by addGeometryFlags and validates the result.
func geometryFromFlags(cmd *cobra.Command) (im2col.Geometry, error) {
	f := cmd.Flags()
	get := func(name string) int {
		v, _ := f.GetInt(name)
		return v
	}
	axis := func(both, specific string) int {
		if f.Changed(specific) {
			return get(specific)
		}
		return get(both)
	}

	g := im2col.Geometry{
		Channels: get("channels"),
		Height:   get("height"),
		Width:    get("width"),
		KernelH:  axis("kernel", "kernel-h"),
		KernelW:  axis("kernel", "kernel-w"),
		PadH:     axis("pad", "pad-h"),
		PadW:     axis("pad", "pad-w"),
		StrideH:  axis("stride", "stride-h"),
		StrideW:  axis("stride", "stride-w"),
	}
	if err := g.Validate(); err != nil {
		return g, err
	}
	slog.Debug("geometry", "image", g.ImageShape(), "columns", g.ColumnShape(),
		"kernel", fmt.Sprintf("%dx%d", g.KernelH, g.KernelW),
		"pad", fmt.Sprintf("%dx%d", g.PadH, g.PadW),
		"stride", fmt.Sprintf("%dx%d", g.StrideH, g.StrideW))
	return g, nil
}

// parallelFromFlags starts from the environment and applies --workers.
func parallelFromFlags(cmd *cobra.Command) parallel.Config {
	cfg := parallel.FromEnv()
	if cmd.Flags().Changed("workers") {
		n, _ := cmd.Flags().GetInt("workers")
		cfg.NumWorkers = n
		cfg.Enabled = n > 1
	}
	return cfg
}
