// Package cmd defines the kb2serial command line surface.
package cmd

// LogOptions configures the structured and raw loggers.
type LogOptions struct {
	Level   string `help:"Log level (trace, debug, info, warn, error)" default:"info" env:"KB2SERIAL_LOG_LEVEL"`
	File    string `help:"Log file path; logs go to stdout/stderr when empty" env:"KB2SERIAL_LOG_FILE"`
	RawFile string `help:"File receiving hex dumps of raw reports and serial bytes" env:"KB2SERIAL_LOG_RAW_FILE"`
}

// CLI is the root kong grammar.
type CLI struct {
	Log    LogOptions    `embed:"" prefix:"log."`
	Config string        `help:"Path to a configuration file (JSON, YAML or TOML)" type:"path"`
	Run    Run           `cmd:"" help:"Run the keyboard to serial bridge"`
	Cfg    ConfigCommand `cmd:"" name:"config" help:"Configuration file utilities"`
}
