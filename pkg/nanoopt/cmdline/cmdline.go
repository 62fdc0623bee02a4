// Package cmdline renders tuned parameters as a JVM launch command line.
package cmdline

import (
	"strconv"
	"strings"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/types"
)

// Fixed flags.
const (
	flagNoVerify     = "-noverify"
	flagTiered       = "-XX:TieredStopAtLevel=1"
	flagJMXOff       = "-Dspring.jmx.enabled=false"
	flagPreTouch     = "-XX:+AlwaysPreTouch"
	egdWindows       = "-Djava.security.egd=file:/dev/urandom"
	egdOther         = "-Djava.security.egd=file:/dev/./urandom"
	configLocationEq = "-Dspring.config.location="
)

// Args returns the launch arguments in order. windows selects the entropy
// source property for the target host.
func Args(p types.TuningParameters, windows bool) []string {
	args := []string{
		"-Xms" + strconv.FormatInt(p.MinHeapMB, 10) + "m",
		"-Xmx" + strconv.FormatInt(p.MaxHeapMB, 10) + "m",
		"-XX:MaxRAM=" + strconv.FormatInt(p.MaxRAMMB, 10) + "m",
		"-Xss" + strconv.Itoa(p.ThreadStackKB) + "k",
		flagNoVerify,
		flagTiered,
		flagJMXOff,
		configLocationEq + p.ConfigLocation,
	}
	if p.PreTouch {
		args = append(args, flagPreTouch)
	}
	if windows {
		return append(args, egdWindows)
	}
	return append(args, egdOther)
}

// Build joins Args with single spaces. The location is used verbatim.
func Build(p types.TuningParameters, windows bool) string {
	return strings.Join(Args(p, windows), " ")
}
