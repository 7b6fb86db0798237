package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
)

const (
	// WSHostKey is the host the WebSocket interface binds to
	WSHostKey = "WS_HOST"
	// WSPortKey is the first port the WebSocket interface tries to listen on
	WSPortKey = "WS_PORT"
	// WSIPWhitelistKey is the comma separated list of remote ips allowed to
	// connect
	WSIPWhitelistKey = "WS_IP_WHITELIST"
	// WSOriginsWhitelistKey is the comma separated list of Origin header
	// values allowed to connect
	WSOriginsWhitelistKey = "WS_ORIGINS_WHITELIST"
	// PortRetryIntervalKey is how long to wait before trying the next port if
	// the current one is in use
	PortRetryIntervalKey = "PORT_RETRY_INTERVAL"
	// MaxConnectionsKey caps the number of simultaneously open connections
	MaxConnectionsKey = "MAX_CONNECTIONS"
	// AcceptRateKey is the max number of WebSocket handshakes per second
	AcceptRateKey = "ACCEPT_RATE"
	// AcceptBurstKey is the burst size of the handshake rate limiter
	AcceptBurstKey = "ACCEPT_BURST"
	// TLSKeyKey is the path of the TLS key for the WebSocket interface
	TLSKeyKey = "TLS_KEY"
	// TLSCertKey is the path of the TLS certificate for the WebSocket
	// interface
	TLSCertKey = "TLS_CERT"
	// DatadirKey is the local data directory to store the internal state of
	// the daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the
	// values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// RPRequestTimeoutKey is the timeout of every request made to a relying
	// party
	RPRequestTimeoutKey = "RP_REQUEST_TIMEOUT"
	// RPRequestsPerSecondKey is the max number of requests per second made to
	// relying parties
	RPRequestsPerSecondKey = "RP_REQUESTS_PER_SECOND"
	// ActionLogURLKey is the optional endpoint action log entries are
	// forwarded to
	ActionLogURLKey = "ACTION_LOG_URL"
	// ActionLogSecretKey is the optional secret used to sign action log
	// requests
	ActionLogSecretKey = "ACTION_LOG_SECRET"
	// MetricsAddrKey is the optional address the Prometheus metrics are
	// served on
	MetricsAddrKey = "METRICS_ADDR"

	DbLocation       = "db"
	KeystoreLocation = "keystore"

	DBTypeBadger   = "badger"
	DBTypeInmemory = "inmemory"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("lwsd", false)

	defaultOriginsWhitelist = []string{
		"chrome-extension://knldjmfmopnpolahpmmgbagdohdnhkik",
		"chrome-extension://fmmadhehohahcpnjjkbdajimilceilcd",
	}
	defaultIPWhitelist = []string{"127.0.0.1", "::1"}

	supportedDBTypes = map[string]bool{
		DBTypeBadger:   true,
		DBTypeInmemory: true,
	}
)

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("LWS")
	vip.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vip.AutomaticEnv()

	vip.SetDefault(WSHostKey, "127.0.0.1")
	vip.SetDefault(WSPortKey, 8898)
	vip.SetDefault(WSIPWhitelistKey, defaultIPWhitelist)
	vip.SetDefault(WSOriginsWhitelistKey, defaultOriginsWhitelist)
	vip.SetDefault(PortRetryIntervalKey, time.Second)
	vip.SetDefault(MaxConnectionsKey, 64)
	vip.SetDefault(AcceptRateKey, 10)
	vip.SetDefault(AcceptBurstKey, 20)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, DBTypeBadger)
	vip.SetDefault(RPRequestTimeoutKey, 30*time.Second)
	vip.SetDefault(RPRequestsPerSecondKey, 10)
}

// InitConfig validates the configuration and creates the datadir.
func InitConfig() error {
	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

// Viper exposes the underlying viper instance, used to bind command flags.
func Viper() *viper.Viper {
	return vip
}

func Set(key string, value interface{}) {
	vip.Set(key, value)
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetFloat(key string) float64 {
	return vip.GetFloat64(key)
}

// GetStringSlice supports both list values and comma separated strings, as
// environment variables are.
func GetStringSlice(key string) []string {
	values := vip.GetStringSlice(key)
	list := make([]string, 0, len(values))
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
	}
	return list
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetDbDir() string {
	return filepath.Join(GetDatadir(), DbLocation)
}

func GetKeystoreDir() string {
	return filepath.Join(GetDatadir(), KeystoreLocation)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	port := GetInt(WSPortKey)
	if port < 0 || port > 65535 {
		return fmt.Errorf("%s must be in range [0, 65535]", WSPortKey)
	}

	if len(GetStringSlice(WSIPWhitelistKey)) <= 0 {
		return fmt.Errorf("%s must not be empty", WSIPWhitelistKey)
	}
	if len(GetStringSlice(WSOriginsWhitelistKey)) <= 0 {
		return fmt.Errorf("%s must not be empty", WSOriginsWhitelistKey)
	}

	tlsKey, tlsCert := GetString(TLSKeyKey), GetString(TLSCertKey)
	if (tlsKey == "" && tlsCert != "") || (tlsKey != "" && tlsCert == "") {
		return fmt.Errorf(
			"TLS for WebSocket interface requires both key and certificate when enabled",
		)
	}

	dbType := GetString(DBTypeKey)
	if !supportedDBTypes[dbType] {
		return fmt.Errorf("unsupported db type %s", dbType)
	}

	if GetDuration(RPRequestTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be a positive duration", RPRequestTimeoutKey)
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
		return err
	}
	return makeDirectoryIfNotExists(filepath.Join(datadir, KeystoreLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
