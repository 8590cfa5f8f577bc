package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-lore"
	"github.com/goliatone/go-lore/cmd/lore/internal/bootstrap"
)

// app carries state shared by subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	in      io.Reader
	out     io.Writer
	errOut  io.Writer

	moduleBuilder func(lore.Config, bootstrap.Options) (*bootstrap.Module, error)
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	return newApp(in, out, errOut).rootCommand()
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		v:             viper.New(),
		in:            in,
		out:           out,
		errOut:        errOut,
		moduleBuilder: bootstrap.BuildModule,
	}
}

func (a *app) rootCommand() *cobra.Command {
	in, out, errOut := a.in, a.out, a.errOut
	root := &cobra.Command{
		Use:           "lore",
		Short:         "Author, convert and render lore cards",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (defaults to ./lore.yaml when present)")
	flags.String("log-provider", "console", "logging provider: console, gologger or none")
	flags.String("log-level", "warn", "minimum log level")
	flags.String("log-format", "", "go-logger output format: json, console or pretty")
	flags.String("scope", "", "project scope for navigation and search")

	_ = a.v.BindPFlag("logging.provider", flags.Lookup("log-provider"))
	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("scope", flags.Lookup("scope"))

	root.AddCommand(newRenderCommand(a), newConvertCommand(a), newSuggestCommand(a))
	return root
}

// config merges defaults, the config file, LORE_* env vars and flags.
func (a *app) config() (lore.Config, error) {
	v := a.v
	v.SetEnvPrefix("LORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else {
		v.SetConfigName("lore")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return lore.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := lore.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return lore.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (a *app) module() (*bootstrap.Module, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	return a.moduleBuilder(cfg, bootstrap.Options{LogWriter: a.errOut})
}

func (a *app) scope(explicit string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return s
	}
	return strings.TrimSpace(a.v.GetString("scope"))
}
