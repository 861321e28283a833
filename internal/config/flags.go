package config

import (
	"flag"
	"os"
	"time"

	"github.com/Rana-Faraz/authbase/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   database connection string
//	-s string   token signing secret
//	-u string   base URL the service is reachable at
//	-o string   comma-separated trusted origins
//	-t int      token validity, minutes
//	-w int      session validity, hours
//	-q          enable SQL query logging
//
// Arguments are filtered through flagx.FilterArgs first so flags owned by
// other components are ignored.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-u", "-o", "-t", "-w", "-q"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to listen on")
	fs.StringVar(&config.DatabaseURL, "d", config.DatabaseURL, "database connection string")
	fs.StringVar(&config.AuthSecret, "s", config.AuthSecret, "token signing secret")
	fs.StringVar(&config.AuthURL, "u", config.AuthURL, "service base URL")

	origins := fs.String("o", "", "comma-separated trusted origins")
	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")
	sessionValidity := fs.Int("w", int(config.SessionValidityDuration.Hours()), "session validity (in hours)")
	fs.BoolVar(&config.DBQueryLog, "q", config.DBQueryLog, "log SQL queries")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only flags that were actually passed may override earlier layers;
	// redefaulting from the truncated minute/hour views would corrupt
	// finer-grained values set by the file or the environment.
	provided := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { provided[f.Name] = true })

	if provided["o"] {
		config.TrustedOrigins = splitOrigins(*origins)
	}
	if provided["t"] {
		config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	}
	if provided["w"] {
		config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Hour
	}
}
