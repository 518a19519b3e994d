package tasks

import (
	"context"

	"github.com/lysyi3m/post-copy/app/xapi"
)

// APIClient is the part of the API client a copy task needs.
type APIClient interface {
	FetchPostDetail(ctx context.Context, id string) ([]byte, error)
	FetchAudioRoom(ctx context.Context, roomID, queryID string) ([]byte, error)
	FetchVmapPlaylist(ctx context.Context, url string) []string
}

var _ APIClient = (*xapi.Client)(nil)

// TaskSchedulerInterface runs tasks on a bounded worker pool.
// Example usage:
//
//	scheduler := NewScheduler(workerCount, taskTimeout)
//	scheduler.Start()
//	defer scheduler.Stop()
//	err := scheduler.Run(ctx, NewCopyPostTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	Run(ctx context.Context, task TaskInterface) error
}
