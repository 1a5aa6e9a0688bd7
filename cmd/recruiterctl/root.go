package main

import (
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/logger"
)

const app = "recruiterctl"

var rootCmd = &cobra.Command{
	Use:          app,
	Short:        "recruiterctl inspects candidate personality profiles and follows the live feed",
	SilenceUsage: true,
}

// Execute ejecuta el comando raiz.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	viper.SetEnvPrefix("RECRUITER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().String("server", "http://localhost:8000", "base URL of the assessment API")
	rootCmd.PersistentFlags().String("token", "", "recruiter access token (see `recruiterctl token`)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	for _, name := range []string{"server", "token", "debug", "json"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			log.Fatalf("binding flag %s: %v", name, err)
		}
	}
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func newAPIClientFromFlags() *apiClient {
	return newAPIClient(viper.GetString("server"), viper.GetString("token"))
}
