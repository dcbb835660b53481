package debug

import (
	"log/slog"
	"runtime"

	"github.com/dustin/go-humanize"
)

// LogMemStats logs Go heap statistics next to the process resident set size
// so native and heap growth can be told apart.
func LogMemStats(logger *slog.Logger, msg string) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	rss, err := ResidentSetSize()
	if err != nil {
		logger.Warn("memlog: rss query failed", slog.String("err", err.Error()))
	}
	logger.Info(msg,
		slog.Int("goroutines", runtime.NumGoroutine()),
		slog.Uint64("heap_alloc", ms.HeapAlloc),
		slog.Uint64("heap_inuse", ms.HeapInuse),
		slog.Uint64("heap_sys", ms.HeapSys),
		slog.Uint64("rss", rss),
		slog.String("rss_human", humanize.IBytes(rss)),
		slog.Uint64("num_gc", uint64(ms.NumGC)),
	)
}
