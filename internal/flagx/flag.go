// Package flagx lets several loaders share os.Args, each parsing only the
// flags it owns.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs returns the subset of args that belong to valued or boolFlags,
// in their original order.
//
// A valued flag keeps the following token as its value unless that token
// starts with '-'. A boolean flag never consumes the next token, so
// "-otp positional" keeps only "-otp". Both kinds may also be written as
// "-name=value", which is always kept whole.
func FilterArgs(args []string, valued []string, boolFlags ...string) []string {
	takesValue := make(map[string]bool, len(valued)+len(boolFlags))
	for _, f := range valued {
		takesValue[f] = true
	}
	for _, f := range boolFlags {
		takesValue[f] = false
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := takesValue[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		hasValue, ok := takesValue[arg]
		if !ok {
			continue
		}
		filtered = append(filtered, arg)
		if hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// JsonConfigFlags returns the config file path given with -c or -config in
// args, or "" when neither is present. Other arguments are ignored.
func JsonConfigFlags(args []string) string {
	var config string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return config
}

// CommandLineArgs is os.Args without the program name.
func CommandLineArgs() []string {
	if len(os.Args) < 2 {
		return nil
	}
	return os.Args[1:]
}
