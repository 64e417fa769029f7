package utils

import "flag"

// CLIOptions holds the daemon's command line flags. Zero values mean "not
// set on the command line" so the caller can overlay them onto a loaded
// config without clobbering file-provided settings.
type CLIOptions struct {
	ConfigPath  string
	DataFile    string
	Host        string
	Port        int
	MetricsAddr string
	Stdio       bool
	Verbose     bool
}

// HandleCLIInputs defines and parses the daemon's flags.
func HandleCLIInputs() *CLIOptions {
	opts := &CLIOptions{}

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to a TOML config file")
	flag.StringVar(&opts.DataFile, "db", "", "Path to the data file (default data.db)")
	flag.StringVar(&opts.Host, "host", "", "Host to bind the TCP server to")
	flag.IntVar(&opts.Port, "port", 0, "Port to use for the TCP server")
	flag.StringVar(&opts.MetricsAddr, "metrics", "", "HTTP listen address for Prometheus metrics (disabled if empty)")
	flag.BoolVar(&opts.Stdio, "stdio", false, "Serve a single command session on stdin/stdout instead of TCP")
	flag.BoolVar(&opts.Verbose, "verbose", false, "Enable debug logging")
	flag.Parse()

	return opts
}
