package serve

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	cmdUtil "github.com/kvprovider/kvprovider/cmd/util"
	"github.com/joho/godotenv"
	"github.com/kvprovider/kvprovider/lib/common"
	"github.com/kvprovider/kvprovider/lib/provider"
	rpccommon "github.com/kvprovider/kvprovider/rpc/common"
	"github.com/kvprovider/kvprovider/rpc/serializer"
	"github.com/kvprovider/kvprovider/rpc/server"
	"github.com/kvprovider/kvprovider/rpc/transport"
	httptransport "github.com/kvprovider/kvprovider/rpc/transport/http"
	"github.com/kvprovider/kvprovider/rpc/transport/tcp"
	"github.com/kvprovider/kvprovider/rpc/transport/unix"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var metricsLog = common.GetLogger("serve")

var (
	serveCmdConfig = &rpccommon.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the provider server",
		Long:    `Start the provider server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is KVPROVIDER_<flag> (e.g. KVPROVIDER_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "config"
	ServeCmd.PersistentFlags().String(key, "provider.json", cmdUtil.WrapString("Path to the provider configuration file listing the databases to open at startup"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Timeout in seconds for blocking backend operations"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. 0.0.0.0:8080, /tmp/kvprovider.sock, ...)"))

	key = "data-dir"
	ServeCmd.PersistentFlags().String(key, "data", cmdUtil.WrapString("Data directory recorded in the server config (disk-backed databases take their location from the path in their own config)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("If set, address on which per-operation Prometheus metrics are exposed at /metrics (e.g. 0.0.0.0:9090)"))
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.ProviderConfigPath = viper.GetString("config")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.DataDir = viper.GetString("data-dir")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return nil
}

// run starts the provider server
func run(_ *cobra.Command, _ []string) error {
	rawConfig, err := os.ReadFile(serveCmdConfig.ProviderConfigPath)
	if err != nil {
		return fmt.Errorf("failed to read provider config %q: %w", serveCmdConfig.ProviderConfigPath, err)
	}

	p, err := provider.Load(rawConfig)
	if err != nil {
		return fmt.Errorf("failed to load provider: %w", err)
	}

	// parse the serializer
	var s serializer.IRPCSerializer
	switch viper.GetString("serializer") {
	case "json":
		s = serializer.NewJSONSerializer()
	case "gob":
		s = serializer.NewGOBSerializer()
	case "binary":
		s = serializer.NewBinarySerializer()
	default:
		return fmt.Errorf("invalid serializer %s", viper.GetString("serializer"))
	}

	// parse the transport
	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "http":
		t = httptransport.NewHttpServerTransport()
	case "tcp":
		t = tcp.NewTCPServerTransport()
	case "unix":
		t = unix.NewUnixDefaultServerTransport()
	default:
		return fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}

	if endpoint := viper.GetString("metrics-endpoint"); endpoint != "" {
		go serveMetrics(endpoint, p)
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		p,
		t,
		s,
	)

	return serv.Serve()
}

// serveMetrics blocks serving p's per-operation counters and histograms
// in Prometheus exposition format at endpoint/metrics.
func serveMetrics(endpoint string, p *provider.Provider) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		p.Metrics.WritePrometheus(w)
	})
	metricsLog.Infof("Starting metrics server on %s", endpoint)
	if err := http.ListenAndServe(endpoint, mux); err != nil {
		metricsLog.Errorf("metrics server stopped: %v", err)
	}
}

// initConfig reads in serveCmdConfig file and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("kvprovider")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
