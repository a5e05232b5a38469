package workers

import (
	"errors"
	"log"
	"sync"

	"github.com/camden-git/photocatalog/media"
	"github.com/camden-git/photocatalog/models"
)

// Thumbnailer renders (or finds the cached) thumbnail of one photo
type Thumbnailer interface {
	ThumbnailFor(photo models.Photo) (string, error)
}

type ThumbnailJob struct {
	Photo models.Photo
}

// ThumbnailGenerator warms the thumbnail cache in the background so the
// first request for a thumbnail does not pay for decoding the original.
type ThumbnailGenerator struct {
	JobQueue    chan ThumbnailJob
	Thumbnailer Thumbnailer
	Wg          sync.WaitGroup
	StopChan    chan struct{}
	Pending     map[int]bool
	Mutex       sync.Mutex
	stopOnce    sync.Once
}

func NewThumbnailGenerator(thumbnailer Thumbnailer, queueSize, numWorkers int) *ThumbnailGenerator {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	gen := &ThumbnailGenerator{
		JobQueue:    make(chan ThumbnailJob, queueSize),
		Thumbnailer: thumbnailer,
		StopChan:    make(chan struct{}),
		Pending:     make(map[int]bool),
	}

	gen.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go gen.worker(i)
	}
	log.Printf("started %d thumbnail worker(s) with queue size %d", numWorkers, queueSize)

	return gen
}

func (tg *ThumbnailGenerator) worker(id int) {
	defer tg.Wg.Done()
	for {
		select {
		case job, ok := <-tg.JobQueue:
			if !ok {
				log.Printf("thumbnail worker %d stopping: Job queue closed", id)
				return
			}
			tg.processJob(job)
			tg.Mutex.Lock()
			delete(tg.Pending, job.Photo.ID)
			tg.Mutex.Unlock()

		case <-tg.StopChan:
			log.Printf("thumbnail worker %d stopping: stop signal received", id)
			return
		}
	}
}

func (tg *ThumbnailGenerator) processJob(job ThumbnailJob) {
	_, err := tg.Thumbnailer.ThumbnailFor(job.Photo)
	switch {
	case err == nil:
		return
	case errors.Is(err, media.ErrSourceNotFound), errors.Is(err, media.ErrUnsupportedImage):
		log.Printf("skipping thumbnail for photo %d (%s): %v", job.Photo.ID, job.Photo.Filename, err)
	default:
		log.Printf("ERROR generating thumbnail for photo %d (%s): %v", job.Photo.ID, job.Photo.Filename, err)
	}
}

// QueueJob schedules a photo unless it is already pending or the queue is full
func (tg *ThumbnailGenerator) QueueJob(job ThumbnailJob) bool {
	tg.Mutex.Lock()
	if tg.Pending[job.Photo.ID] {
		tg.Mutex.Unlock()
		return false
	}

	tg.Pending[job.Photo.ID] = true
	tg.Mutex.Unlock()

	select {
	case tg.JobQueue <- job:
		return true
	default:
		log.Printf("WARNING: Thumbnail job queue full, failed to queue photo %d", job.Photo.ID)
		tg.Mutex.Lock()
		delete(tg.Pending, job.Photo.ID)
		tg.Mutex.Unlock()
		return false
	}
}

// QueuePhotos queues every photo and returns how many were accepted
func (tg *ThumbnailGenerator) QueuePhotos(photos []models.Photo) int {
	queued := 0
	for _, p := range photos {
		if tg.QueueJob(ThumbnailJob{Photo: p}) {
			queued++
		}
	}
	log.Printf("queued %d of %d photo(s) for thumbnail generation", queued, len(photos))
	return queued
}

func (tg *ThumbnailGenerator) Stop() {
	tg.stopOnce.Do(func() {
		log.Println("stopping thumbnail generator...")
		close(tg.StopChan)
		tg.Wg.Wait()
		log.Println("all thumbnail workers stopped")
	})
}
