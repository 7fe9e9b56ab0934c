package tasks

// TaskSchedulerInterface defines the interface for background task scheduling.
// Used by the main application to manage the worker pool that backfills
// summaries, seeds interaction data, and sweeps the trending cache.
// Example usage:
//
//	scheduler := NewScheduler(articleRepo, interactionRepo, summarizer, cache)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
