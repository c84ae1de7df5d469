// Package tasks defines the background job types shared by the API and
// the worker process.
package tasks

import (
	"github.com/hibiken/asynq"
)

// Task type identifiers.
const (
	// TypeNotificationPurge removes read notifications past retention.
	TypeNotificationPurge = "notifications:purge_read"
	// TypePresenceSweep demotes users whose connections went silent.
	TypePresenceSweep = "presence:sweep"
)

// NewNotificationPurgeTask builds the purge job. All parameters live in
// worker configuration, so the payload is empty.
func NewNotificationPurgeTask() *asynq.Task {
	return asynq.NewTask(TypeNotificationPurge, nil)
}

// NewPresenceSweepTask builds the presence sweep job.
func NewPresenceSweepTask() *asynq.Task {
	return asynq.NewTask(TypePresenceSweep, nil)
}
