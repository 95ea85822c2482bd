package tasks

// TaskSchedulerInterface defines the interface for task scheduling
// operations. The scheduler owns the worker pool and the periodic catalog
// sync; the API layer enqueues ad-hoc tasks through it.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	NewSyncTask() *SyncCatalogTask
}
