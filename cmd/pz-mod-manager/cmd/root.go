package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pz-mod-manager/internal/api"
	"pz-mod-manager/internal/config"
	"pz-mod-manager/internal/database"
	"pz-mod-manager/internal/ini"
	"pz-mod-manager/internal/models"
	"pz-mod-manager/internal/modlist"
)

// cfgFile holds the path to the config file specified by the user
var cfgFile string

// iniFileFlag holds the value of the --file flag
var iniFileFlag string

// workshopPathFlag holds the value of the --workshop-path flag
var workshopPathFlag string

// apiKeyFlag holds the value of the --api-key flag
var apiKeyFlag string

// logApiFlag holds the value of the --log-api flag
var logApiFlag bool

// apiTimeoutFlag holds the value of the --api-timeout flag
var apiTimeoutFlag int

// verboseFlag holds the value of the --verbose flag
var verboseFlag bool

// globalConfig holds the loaded configuration
var globalConfig models.Config

// globalHttpTransport holds the globally configured HTTP transport (base or logging-wrapped)
var globalHttpTransport http.RoundTripper

// globalDetailsCache is the process-wide bitcask handle. Bitcask takes an
// exclusive lock on its directory, so every consumer shares this one handle.
var globalDetailsCache *database.DB

// detailsCacheOpened records that an open was attempted, so a failed or
// pathless open is not retried on every call.
var detailsCacheOpened bool

var rootCmd = &cobra.Command{
	Use:   "pz-mod-manager",
	Short: "Manage the mod list of a Project Zomboid server",
	Long: `pz-mod-manager edits the Mods= and WorkshopItems= lines of a Project
Zomboid server ini, pairing mod ids with their Steam Workshop items via a
local workshop scan and enriching names through the Steam Web API.`,
	PersistentPreRunE: loadGlobalConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	defer func() {
		if globalDetailsCache != nil {
			if err := globalDetailsCache.Close(); err != nil {
				log.WithError(err).Error("Error closing details cache")
			}
		}
		if loggingTransport, ok := globalHttpTransport.(*api.LoggingTransport); ok && loggingTransport != nil {
			if err := loggingTransport.Close(); err != nil {
				log.WithError(err).Error("Error closing API log file")
			}
		}
	}()

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.toml", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&iniFileFlag, "file", "f", "", "Server ini file to manage (overrides config)")
	rootCmd.PersistentFlags().StringVar(&workshopPathFlag, "workshop-path", "", "Steam workshop content root (overrides config)")
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "Steam Web API key (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&logApiFlag, "log-api", false, "Log API requests/responses to api.log (overrides config)")
	rootCmd.PersistentFlags().IntVar(&apiTimeoutFlag, "api-timeout", -1, "Timeout for API HTTP client in seconds (overrides config, -1 uses config default)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
}

// loadGlobalConfig loads the configuration and applies flag overrides, then
// sets up the global HTTP transport.
func loadGlobalConfig(cmd *cobra.Command, args []string) error {
	if verboseFlag {
		log.SetLevel(log.DebugLevel)
	}

	var err error
	globalConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		// Not fatal: most commands can run from flags alone, and those that
		// cannot will fail on the missing field they need.
		log.WithError(err).Warnf("Failed to load configuration from %s", cfgFile)
		globalConfig = models.Config{AppID: "108600", SearchPageSize: 25, ApiClientTimeoutSec: 15}
	}

	if cmd.Flags().Changed("file") && iniFileFlag != "" {
		globalConfig.IniPath = iniFileFlag
	}
	if cmd.Flags().Changed("workshop-path") && workshopPathFlag != "" {
		globalConfig.WorkshopPath = workshopPathFlag
	}
	if cmd.Flags().Changed("api-key") && apiKeyFlag != "" {
		globalConfig.ApiKey = apiKeyFlag
	}
	if cmd.Flags().Changed("log-api") {
		globalConfig.LogApiRequests = logApiFlag
	}
	if cmd.Flags().Changed("api-timeout") {
		if apiTimeoutFlag > 0 {
			globalConfig.ApiClientTimeoutSec = apiTimeoutFlag
		} else {
			log.Warnf("--api-timeout flag provided with invalid value %d, using config value: %d sec", apiTimeoutFlag, globalConfig.ApiClientTimeoutSec)
		}
	}

	globalHttpTransport = http.DefaultTransport
	if globalConfig.LogApiRequests {
		loggingTransport, err := api.NewLoggingTransport(http.DefaultTransport, "api.log")
		if err != nil {
			log.WithError(err).Error("Failed to initialize API logging transport, logging disabled.")
		} else {
			globalHttpTransport = loggingTransport
		}
	}
	return nil
}

// requireIniPath resolves the managed ini path from flags/config or exits.
func requireIniPath() string {
	if globalConfig.IniPath == "" {
		log.Error("No server ini specified. Use --file or set IniPath in the config.")
		os.Exit(1)
	}
	return globalConfig.IniPath
}

// newManager builds the reconciliation manager for the configured ini,
// wiring in the workshop scan root and, when an API key is available, the
// cache-backed Steam lookup.
func newManager() *modlist.Manager {
	opts := ini.Options{LegacyModPrefix: globalConfig.LegacyModPrefix}
	m := modlist.NewManager(requireIniPath(), opts)
	m.ScanRoot = globalConfig.WorkshopPath
	m.AppID = globalConfig.AppID
	if globalConfig.ApiKey != "" {
		m.Lookup = &modlist.CachedLookup{
			Remote: newAPIClient(),
			Cache:  openDetailsCache(),
		}
	}
	return m
}

// newAPIClient builds a Steam client on the global transport.
func newAPIClient() *api.Client {
	httpClient := &http.Client{
		Transport: globalHttpTransport,
		Timeout:   time.Duration(globalConfig.ApiClientTimeoutSec) * time.Second,
	}
	return api.NewClient(globalConfig.ApiKey, httpClient, globalConfig)
}

// openDetailsCache opens the bitcask details cache once per process and hands
// out the shared handle on later calls, or returns nil when no path is
// configured (lookups then always hit the network). The handle is closed by
// Execute when the command finishes.
func openDetailsCache() *database.DB {
	if detailsCacheOpened {
		return globalDetailsCache
	}
	detailsCacheOpened = true
	if globalConfig.DatabasePath == "" {
		return nil
	}
	db, err := database.Open(globalConfig.DatabasePath)
	if err != nil {
		log.WithError(err).Warn("Failed to open details cache, continuing without it")
		return nil
	}
	globalDetailsCache = db
	return db
}
