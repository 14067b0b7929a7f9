package emailsvc

import (
	"sync"

	"github.com/trezcool/hukumu/core"
	"github.com/trezcool/hukumu/services/metrics"
)

// queuedService decorates a backend with a bounded buffered queue drained by
// worker goroutines. Enqueueing never blocks the caller: when the queue is
// full the message is dropped and logged, so a slow provider can delay
// notifications but never an API response.
type queuedService struct {
	backend core.EmailService
	logger  core.Logger

	queue chan *core.EmailMessage
	wg    sync.WaitGroup
	once  sync.Once
}

var _ core.EmailService = (*queuedService)(nil)

func NewQueuedService(backend core.EmailService, logger core.Logger, size, workers int) *queuedService {
	if size <= 0 {
		size = 100
	}
	if workers <= 0 {
		workers = 1
	}
	svc := &queuedService{
		backend: backend,
		logger:  logger,
		queue:   make(chan *core.EmailMessage, size),
	}
	for i := 0; i < workers; i++ {
		svc.wg.Add(1)
		go svc.work()
	}
	return svc
}

func (svc *queuedService) work() {
	defer svc.wg.Done()
	for msg := range svc.queue {
		svc.backend.SendMessages(msg)
	}
}

func (svc *queuedService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		select {
		case svc.queue <- msg:
			metrics.ObserveEmailQueued(msg.TemplateName)
		default:
			svc.logger.Warn("email queue full, dropping message", "subject", msg.Subject)
		}
	}
}

// Close stops accepting messages and waits for queued ones to drain.
func (svc *queuedService) Close() {
	svc.once.Do(func() { close(svc.queue) })
	svc.wg.Wait()
}
