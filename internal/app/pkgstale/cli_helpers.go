package pkgstale

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// The version of the tool, set at build time.
var Version = "0.3.0"

type stringSliceFlag []string

func (i *stringSliceFlag) String() string {
	return strings.Join(*i, "; ")
}

func (i *stringSliceFlag) Set(value string) error {
	*i = append(*i, value)
	return nil
}

// Prints the help for a command
func printCmdUsage(flagSet *flag.FlagSet, commandName, nonFlagArgs string) {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintf(os.Stderr, "  pkgstale %s [flags]", commandName)
	if nonFlagArgs != "" {
		fmt.Fprint(os.Stderr, " "+nonFlagArgs)
	}
	fmt.Fprintln(os.Stderr, "")

	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	flagSet.PrintDefaults()
}

// The implementation for the "help" command
func HelpCmd(args []string) error {
	flag.Usage()
	return nil
}
