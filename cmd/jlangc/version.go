package main

import (
	"fmt"
	"os"

	"golang.org/x/mod/semver"
)

// dumpFormatVersion is the textual MIR dump format's own version, bumped
// whenever Function.Dump's rendering changes in a way a downstream
// reader (a golden-file test, an external tool) would notice.
const dumpFormatVersion = "v1.0.0"

// checkFormatCompat compares a caller-supplied dump format version
// against the one this binary emits, the way the teacher uses
// golang.org/x/mod for its own version comparisons. Only the major
// component needs to match for compatibility; a minor/patch bump is
// assumed additive.
func checkFormatCompat(want string) {
	if !semver.IsValid(want) {
		fmt.Fprintf(os.Stderr, "jlangc: %q is not a valid semantic version\n", want)
		os.Exit(1)
	}
	if semver.Major(want) != semver.Major(dumpFormatVersion) {
		fmt.Fprintf(os.Stderr, "jlangc: dump format %s is incompatible with this binary's %s\n", want, dumpFormatVersion)
		os.Exit(1)
	}
	fmt.Printf("jlangc: %s is compatible with this binary's %s\n", want, dumpFormatVersion)
}
