package command

import (
	"errors"
	"net/url"
	"os"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/don/domain"
	"github.com/deemkeen/don/util"
	"github.com/spf13/cobra"
)

var errNoAPI = errors.New("no backend configured, set apiUrl in config.yaml, DON_API_URL or --api-url")

// NewRootCmd builds the don command tree
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           util.Name,
		Short:         "don - public timeline viewer for federated networks",
		Long:          "don shows the public timeline of a federated backend in the terminal, over ssh and on the web.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = util.GetVersion()
	cmd.SetVersionTemplate(util.Name + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("api-url", "", "backend base url (overrides apiUrl)")
	cmd.PersistentFlags().String("log-level", "", "log level (overrides logLevel)")

	cmd.AddCommand(
		NewServeCmd(),
		NewViewCmd(),
		NewTimelineCmd(),
	)

	return cmd
}

type appContext struct {
	Conf   *util.AppConfig
	Logger *log.Logger
}

// getContext reads the configuration, applies the global flags and sets up
// logging
func getContext(cmd *cobra.Command) (*appContext, error) {
	conf, err := util.ReadConf()
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		conf.Conf.ApiUrl = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		conf.Conf.LogLevel = v
	}

	logger := util.SetupLogger(conf.Conf.LogLevel)
	logger.SetOutput(cmd.ErrOrStderr())
	logger.Debug("Configuration", "conf", util.PrettyPrint(conf))

	return &appContext{Conf: conf, Logger: logger}, nil
}

func (a *appContext) requireAPI() error {
	if a.Conf.Conf.ApiUrl == "" {
		return errNoAPI
	}
	return nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("q", "", "only activities matching this term")
	cmd.Flags().String("before", "", "only activities before this time (RFC 3339)")
	cmd.Flags().String("after", "", "only activities after this time (RFC 3339)")
}

func readFilter(cmd *cobra.Command) (domain.Filter, error) {
	v := url.Values{}
	for _, name := range []string{"q", "before", "after"} {
		if s, _ := cmd.Flags().GetString(name); s != "" {
			v.Set(name, s)
		}
	}
	return domain.ParseFilter(v)
}
