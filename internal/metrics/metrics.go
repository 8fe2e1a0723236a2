package metrics

import "expvar"

// 进程内计数器，通过 /debug/vars 暴露
var (
	SwipesCommitted = expvar.NewInt("swipes_committed")
	SwipesCancelled = expvar.NewInt("swipes_cancelled")
	SwipesUndone    = expvar.NewInt("swipes_undone")
	FeedFetches     = expvar.NewInt("feed_fetches")
	FeedErrors      = expvar.NewInt("feed_errors")
	JournalWrites   = expvar.NewInt("journal_writes")
)
