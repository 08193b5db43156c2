package cli

import (
	"fmt"
	"io"

	grid "github.com/randalmurphal/opengrid/internal/errors"
)

// PrintError prints an error to w. GridErrors use their user-facing form;
// verbose adds the code and cause.
func PrintError(w io.Writer, err error, verbose bool) {
	if gridErr := grid.AsGridError(err); gridErr != nil {
		fmt.Fprintln(w, gridErr.UserMessage())
		if verbose {
			fmt.Fprintf(w, "\nCode: %s\n", gridErr.Code)
			if gridErr.Cause != nil {
				fmt.Fprintf(w, "Cause: %v\n", gridErr.Cause)
			}
		}
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
