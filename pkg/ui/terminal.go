package ui

import (
	"fmt"
	"io"
	"os"
)

// Banner printed at startup
const Banner = `
  _                     _                                     
 | |___      _____  ___| |_ ___  ___ _ __ __ _ _ __   ___ _ __ 
 | __\ \ /\ / / _ \/ _ \ __/ __|/ __| '__/ _' | '_ \ / _ \ '__|
 | |_ \ V  V /  __/  __/ |_\__ \ (__| | | (_| | |_) |  __/ |   
  \__| \_/\_/ \___|\___|\__|___/\___|_|  \__,_| .__/ \___|_|   
                                              |_|              
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// Output is where the Print helpers write
var Output io.Writer = os.Stdout

func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

// PrintBanner prints the banner in cyan
func PrintBanner() {
	fmt.Fprint(Output, Cyan(Banner))
}

// PrintError prints an error message in red
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(Output, Red(msg))
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	fmt.Fprintln(Output, Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	fmt.Fprintf(Output, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = msg + ": " + fmt.Sprintf("%v", args[0])
	}
	fmt.Fprintln(Output, Yellow(msg))
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	fmt.Fprintln(Output, Magenta(msg))
}
