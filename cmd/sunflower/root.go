package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sunflower-search/sunflower/pkg/config"
	"github.com/sunflower-search/sunflower/pkg/metrics"
)

const envPrefix = "SUNFLOWER"

type options struct {
	debug          bool
	configFile     string
	metricsAddress string
	output         string
	trace          bool

	v      *viper.Viper
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	o := &options{v: viper.New()}

	cmd := &cobra.Command{
		Use:          "sunflower",
		Short:        "Search for sunflower-free set families",
		Long:         `Builds families of n-element sets with no k-sunflower, either exactly (solver driven, can prove infeasibility) or heuristically (simulated annealing), and analyzes produced families.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			o.logger = logrus.New()
			o.logger.SetOutput(cmd.ErrOrStderr())
			if o.debug {
				o.logger.SetLevel(logrus.DebugLevel)
			}
			o.logger.Debugf("log level %s", o.logger.Level)

			if o.metricsAddress != "" {
				metrics.Register(prometheus.DefaultRegisterer)
				serveMetrics(cmd.Context(), o.metricsAddress, o.logger)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&o.debug, "debug", false, "use debug log level")
	cmd.PersistentFlags().StringVar(&o.configFile, "config", "", "path to a yaml config file with run parameters")
	cmd.PersistentFlags().StringVar(&o.metricsAddress, "metrics-address", "", "serve prometheus metrics on this address, e.g. :8080")

	cmd.AddCommand(newExactCmd(o), newAnnealCmd(o), newAnalyzeCmd(o), newVersionCmd())
	return cmd
}

// addParamFlags registers the run parameters shared by both search commands,
// defaulting to d. Flag names match the mapstructure keys of config.Params.
func addParamFlags(fs *pflag.FlagSet, o *options, d config.Params) {
	fs.IntP("n", "n", d.N, "size of every set")
	fs.IntP("k", "k", d.K, "size of the forbidden sunflower")
	fs.IntP("universe", "U", d.U, "number of universe elements")
	fs.IntP("target", "m", d.M, "number of sets in the family")
	fs.Int64("seed", d.Seed, "random seed")
	fs.StringVarP(&o.output, "output", "o", "", "write the family here (.json or .yaml); defaults to sunflower_n{n}_k{k}_m{m}.json")
}

// params layers flags over SUNFLOWER_* environment variables over the config
// file over defaults.
func (o *options) params(cmd *cobra.Command, p config.Params) (config.Params, error) {
	if err := o.v.BindPFlags(cmd.Flags()); err != nil {
		return p, err
	}
	o.v.SetEnvPrefix(envPrefix)
	o.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	o.v.AutomaticEnv()

	if o.configFile != "" {
		o.v.SetConfigFile(o.configFile)
		o.v.SetConfigType("yaml")
		if err := o.v.ReadInConfig(); err != nil {
			return p, errors.Wrapf(err, "reading config %s", o.configFile)
		}
	}
	if err := o.v.Unmarshal(&p); err != nil {
		return p, errors.Wrap(err, "decoding run parameters")
	}

	o.logger.WithFields(logrus.Fields{
		"n": p.N, "k": p.K, "U": p.U, "m": p.M, "seed": p.Seed,
	}).Info("run parameters")
	return p, nil
}

func serveMetrics(ctx context.Context, addr string, logger logrus.FieldLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Metrics (http) serving failed: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		server.Close()
	}()
	logger.Infof("serving metrics on %s", addr)
}
