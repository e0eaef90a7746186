// Package clock provides a replaceable time source.
package clock

import (
	"strconv"
	"time"
)

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Stamp returns the current time in unix milliseconds, used as a backup file suffix
func Stamp() string {
	return strconv.FormatInt(Now().UnixMilli(), 10)
}
