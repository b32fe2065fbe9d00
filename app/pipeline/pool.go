package pipeline

import (
	"context"
	"sync"

	"github.com/lysyi3m/rss-relay/app/feed"
)

type fetchResult struct {
	source feed.Source
	feed   *feed.Feed
	err    error
}

type fetchJob struct {
	index  int
	source feed.Source
}

// fetchAll fetches every source over a fixed pool of workers. Results keep
// the order of sources regardless of completion order.
func fetchAll(ctx context.Context, fetcher FeedFetcher, sources []feed.Source, workerCount int) []fetchResult {
	results := make([]fetchResult, len(sources))
	if len(sources) == 0 {
		return results
	}

	workerCount = max(1, min(workerCount, len(sources)))

	jobs := make(chan fetchJob)
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				fd, err := fetcher.Run(ctx, job.source)
				results[job.index] = fetchResult{source: job.source, feed: fd, err: err}
			}
		}()
	}

	for i, src := range sources {
		jobs <- fetchJob{index: i, source: src}
	}
	close(jobs)

	wg.Wait()
	return results
}
