package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                string  // connection string for the database
	NatsURL           string  // URL of the NATS server delivering telemetry
	SubjectPrefix     string  // first token of the telemetry subject tree
	WaitForServices   string  // duration to wait for other services to be ready
	LogLevel          string  // sets the log level (zap log level values)
	SQLLogLevel       string  // sets the log level for sql subsystem
	LogFormat         string  // text vs json
	LogFilter         string  // zapfilter rules for the text logger
	FuelCutoff        float64 // fuel amount the engine needs to not run dry
	PitQuirkThreshold float64 // track pct below which "approaching pits" is treated as pit exit
	EnableTelemetry   bool    // enable telemetry
	TelemetryEndpoint string  // endpoint for telemetry
	ProfilingPort     int     // port for profiling
	PrintMessage      bool    // if true, the message payload will be print on debug level
	TLSCertFile       string  // file containing the TLS certificate for the NATS connection
	TLSKeyFile        string  // file containing the TLS private key for the NATS connection
	TLSCAFile         string  // file containing the root CA used to verify the NATS server
	TraefikCerts      string  // path to traefik certs file
	TraefikCertDomain string  // the domain to lookup within the traefik certs
	HistoryCacheTTL   string  // duration to keep fuel history entries cached
)

// Config holds the configuration values which are used by the application
type Config struct {
	PrintMessage bool // if true, the message payload will be print on debug level
}
