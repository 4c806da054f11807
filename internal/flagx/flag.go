// Package flagx lets several components parse their own flags from the same
// command line without tripping over each other's unknown flags.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// Pick returns the subset of args that belongs to the named flags, keeping
// the original order. Both "-name value" and "-name=value" forms are
// recognised; a value is only consumed when it does not itself look like a
// flag. Names are given without leading dashes, and either "-x" or "--x"
// spelling is accepted on the command line.
func Pick(args []string, names ...string) []string {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[strings.TrimLeft(n, "-")] = true
	}

	picked := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !known[name] {
			continue
		}
		picked = append(picked, arg)

		if !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			picked = append(picked, args[i+1])
			i++
		}
	}
	return picked
}

// ConfigPath extracts the config file path passed with -c or -config.
// It returns "" when neither flag is present.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(Pick(args, "c", "config"))

	return path
}
