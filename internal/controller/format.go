package controller

import (
	"fmt"

	"github.com/dustin/go-humanize"

	m "github.com/mouse-blink/portyp/internal/model"
)

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}

	return humanize.Bytes(uint64(n))
}

func summaryVerdict(summary m.Summary) string {
	if summary.HasFailures() {
		return fmt.Sprintf("%d of %d entries failed", len(summary.Failures), summary.Total())
	}

	return fmt.Sprintf("Done: %d entries, %d package(s) materialized (%s)",
		summary.Total(), len(summary.Packages), formatBytes(summary.PackageBytes()))
}
