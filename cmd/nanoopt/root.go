package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/config"
)

var (
	cfgFile string
	quiet   bool
	verbose bool

	// settings and appConfig are loaded by the PersistentPreRunE hook.
	settings  *viper.Viper
	appConfig *config.Config

	rootCmd = &cobra.Command{
		Use:   "nanoopt",
		Short: "Tune the start-up of a Spring Boot application",
		Long: `nanoopt reads the heap of a running JVM and the condition evaluation
report of a Spring Boot application, and produces a profile report:
tuned JVM flags, the early @Import list of public configuration classes,
a lazy initialization template and start-up friendly properties.

Examples:
  nanoopt report --id orders --conditions conditions.json --classpath app.jar
  nanoopt report --id orders --source process --pid 4242 --stdout
  nanoopt cmdline --id orders --copy
  nanoopt watch --id orders --source process --pid 4242
  nanoopt history                 # View generated reports
  nanoopt config show             # Show configuration`,
		SilenceUsage:      true,
		PersistentPreRunE: initialize,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdownLogging()
		},
	}
)

// flagKeys maps persistent flag names to configuration keys.
var flagKeys = map[string]string{
	"id":                 "report.id",
	"use-default-memory": "memory.use_default",
	"pre-touch":          "memory.pre_touch",
	"thread-stack":       "memory.thread_stack_kb",
	"config-location":    "command_line.config_location",
	"target-os":          "command_line.target_os",
	"lazy-package":       "lazy.package",
	"conditions":         "conditions.path",
	"classpath":          "classpath.paths",
	"exclude":            "classpath.exclude",
	"source":             "telemetry.source",
	"pid":                "telemetry.pid",
	"heap-init":          "telemetry.static.init",
	"heap-used":          "telemetry.static.used",
	"heap-committed":     "telemetry.static.committed",
	"heap-max":           "telemetry.static.max",
	"dir":                "report.dir",
	"suffix":             "report.suffix",
	"format":             "report.format",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/nanoopt/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug output")
	addInputFlags(rootCmd)
}

// addInputFlags registers the flags describing the application being
// profiled. They are persistent so every analysis command shares them.
func addInputFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("id", "", "application id, used in the report header and file name")
	f.String("conditions", "", "condition evaluation dump (actuator JSON, flat JSON or YAML)")
	f.StringSlice("classpath", nil, "jars, wars or class directories to classify (repeatable)")
	f.StringSlice("exclude", nil, "glob of files under a classpath directory to skip (repeatable)")
	f.Bool("no-cache", false, "do not use the classpath cache")

	f.String("source", "", "heap source: runtime, process or static")
	f.Int32("pid", 0, "JVM process id for --source process")
	f.String("heap-init", "", "static initial heap (e.g. 128m), selects the static source")
	f.String("heap-used", "", "static used heap")
	f.String("heap-committed", "", "static committed heap")
	f.String("heap-max", "", "static maximum heap (e.g. 1g)")

	f.Bool("use-default-memory", false, "keep the default heap sizes instead of tuning")
	f.Bool("pre-touch", false, "add -XX:+AlwaysPreTouch")
	f.Int("thread-stack", 0, "thread stack size in KB (-Xss)")
	f.String("config-location", "", "value of spring.config.location")
	f.String("target-os", "", "OS the command line is for (default: this host)")
	f.String("lazy-package", "", "package of the generated lazy initialization class")
}

// bindFlags binds the command's flags to their configuration keys. Flags
// only override the configuration when set on the command line.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// loadConfig reads the configuration with the command's flags applied.
func loadConfig(cmd *cobra.Command) (*viper.Viper, *config.Config, error) {
	v, err := config.NewViper(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if err := bindFlags(v, cmd); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Decode(v)
	if err != nil {
		return nil, nil, err
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Classpath.Cache = false
	}
	return v, cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message to stderr if quiet mode is not enabled.
// Stdout is reserved for command output.
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
