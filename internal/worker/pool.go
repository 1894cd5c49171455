package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"eagle-bank/internal/utils"
)

var (
	ErrQueueFull       = errors.New("очередь задач переполнена")
	ErrShutdownTimeout = errors.New("таймаут остановки пула воркеров")
)

// Job - фоновая задача (инвалидация кеша и т.п.).
type Job struct {
	ID     string
	Task   func() error
	OnDone func(error)
}

// Pool - пул воркеров с ограниченной очередью и повторами.
type Pool struct {
	workers    int
	maxRetries int
	jobQueue   chan Job
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup

	mu        sync.Mutex
	completed int64
	failed    int64
}

// Stats - статистика пула для health-эндпоинта.
type Stats struct {
	Workers       int   `json:"workers"`
	QueuedJobs    int   `json:"queued_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
}

func NewPool(workers, queueSize, maxRetries int) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	utils.LogInfo("WorkerPool", "Создан пул: воркеров %d, очередь %d, повторов %d", workers, queueSize, maxRetries)

	return &Pool{
		workers:    workers,
		maxRetries: maxRetries,
		jobQueue:   make(chan Job, queueSize),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	utils.LogSuccess("WorkerPool", "Запущено воркеров: %d", p.workers)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.execute(id, job)
		}
	}
}

func (p *Pool) execute(workerID int, job Job) {
	var err error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			utils.LogWarning("WorkerPool", "Воркер #%d: повтор #%d задачи %s", workerID, attempt, job.ID)
			time.Sleep(time.Duration(100*attempt) * time.Millisecond)
		}

		if err = job.Task(); err == nil {
			p.mu.Lock()
			p.completed++
			p.mu.Unlock()

			if job.OnDone != nil {
				job.OnDone(nil)
			}
			return
		}
	}

	p.mu.Lock()
	p.failed++
	p.mu.Unlock()

	utils.LogError("WorkerPool", "Задача "+job.ID+" провалилась", err)
	if job.OnDone != nil {
		job.OnDone(err)
	}
}

// Submit добавляет задачу без блокировки; при переполнении - ErrQueueFull.
func (p *Pool) Submit(job Job) error {
	select {
	case <-p.ctx.Done():
		return context.Canceled
	case p.jobQueue <- job:
		return nil
	default:
		utils.LogWarning("WorkerPool", "Очередь переполнена, задача %s отклонена", job.ID)
		return ErrQueueFull
	}
}

// Shutdown закрывает очередь и ждёт воркеров не дольше timeout.
func (p *Pool) Shutdown(timeout time.Duration) error {
	close(p.jobQueue)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		utils.LogSuccess("WorkerPool", "Все воркеры завершили работу")
		return nil
	case <-time.After(timeout):
		p.cancel()
		utils.LogWarning("WorkerPool", "Превышен таймаут остановки, принудительное завершение")
		return ErrShutdownTimeout
	}
}

func (p *Pool) GetStats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		Workers:       p.workers,
		QueuedJobs:    len(p.jobQueue),
		CompletedJobs: p.completed,
		FailedJobs:    p.failed,
	}
}
