package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

const envPrefix = "WILLSERV_"

const (
	dispatchRandom = "random"
	dispatchShared = "shared"
)

type Config struct {
	Host           string
	Port           string
	Workers        int
	Dispatch       string
	MaxRequestSize int
	ReadTimeout    time.Duration
	AllowedMethods []string
	Dir            string
	LogLevel       string
	LogFormat      string
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// parseConfig reads flags from args. Environment variables named
// WILLSERV_<FLAG> (dashes as underscores) set defaults that flags override,
// and a single positional argument overrides the port.
func parseConfig(args []string, getenv func(string) string, output io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("will-serv", flag.ContinueOnError)
	fs.SetOutput(output)

	c := &Config{}
	var allow string
	fs.StringVar(&c.Host, "host", "127.0.0.1", "host to listen on")
	fs.StringVar(&c.Port, "port", "8080", "port number")
	fs.IntVar(&c.Workers, "workers", 20, "number of worker goroutines")
	fs.StringVar(&c.Dispatch, "dispatch", dispatchRandom, "connection dispatch: random (per-worker queues) or shared (one queue)")
	fs.IntVar(&c.MaxRequestSize, "max-request", 1<<20, "maximum bytes read for one request")
	fs.DurationVar(&c.ReadTimeout, "read-timeout", 0, "read deadline per connection, 0 for none")
	fs.StringVar(&allow, "allow", "GET", "comma-separated list of allowed methods")
	fs.StringVar(&c.Dir, "dir", "", "directory of pages to serve, embedded pages when empty")
	fs.StringVar(&c.LogLevel, "log-level", "info", "log level")
	fs.StringVar(&c.LogFormat, "log-format", logFormatConsole, "log format: console or json")

	var envErr error
	fs.VisitAll(func(f *flag.Flag) {
		v := getenv(envPrefix + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")))
		if v == "" || envErr != nil {
			return
		}
		if err := f.Value.Set(v); err != nil {
			envErr = fmt.Errorf("env %s: %w", f.Name, err)
		}
	})
	if envErr != nil {
		return nil, envErr
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		c.Port = fs.Arg(0)
	default:
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}

	c.AllowedMethods = splitMethods(allow)
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func splitMethods(s string) []string {
	var methods []string
	for _, m := range strings.Split(s, ",") {
		if m = strings.TrimSpace(m); m != "" {
			methods = append(methods, m)
		}
	}
	return methods
}

func (c *Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxRequestSize < len(BodyDelimiter) {
		return fmt.Errorf("max-request too small: %d", c.MaxRequestSize)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("read-timeout must not be negative")
	}
	if len(c.AllowedMethods) == 0 {
		return fmt.Errorf("allow list is empty")
	}
	if c.Dispatch != dispatchRandom && c.Dispatch != dispatchShared {
		return fmt.Errorf("unknown dispatch strategy %q", c.Dispatch)
	}
	if c.Port == "" {
		return fmt.Errorf("port is empty")
	}
	return nil
}
