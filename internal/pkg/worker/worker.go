package worker

import (
	"context"
	"sync"
	"time"

	"newsroom_api/pkg/metrics"

	"go.uber.org/zap"
)

// Event 审核事件，记录新闻或评论的一次状态变化
type Event struct {
	Entity   string    `json:"entity"` // news, comment
	EntityID string    `json:"entityId"`
	Action   string    `json:"action"`
	ActorID  string    `json:"actorId"`
	AuthorID string    `json:"authorId"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	Note     string    `json:"note"`
	At       time.Time `json:"at"`
	Retry    int       `json:"-"` // 重试次数
}

// Handler 处理单个事件
type Handler interface {
	Handle(ctx context.Context, e Event) error
}

// HandlerFunc 函数适配器
type HandlerFunc func(ctx context.Context, e Event) error

func (f HandlerFunc) Handle(ctx context.Context, e Event) error {
	return f(ctx, e)
}

// Recorder 事件投递接口，业务服务只依赖它
type Recorder interface {
	Submit(e Event)
}

// Options 工作池参数
type Options struct {
	Workers    int
	Buffer     int
	MaxRetry   int
	RetryDelay time.Duration // 第 n 次重试延迟 n*RetryDelay
	Timeout    time.Duration // 单个事件处理超时
}

type WorkerPool struct {
	TaskQueue  chan Event
	RetryQueue chan Event // 重试队列
	handler    Handler
	opts       Options
	log        *zap.Logger

	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewWorkerPool(handler Handler, opts Options, log *zap.Logger) *WorkerPool {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}
	if opts.MaxRetry < 0 {
		opts.MaxRetry = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	retrySize := opts.Buffer / 2
	if retrySize == 0 {
		retrySize = 1
	}

	return &WorkerPool{
		TaskQueue:  make(chan Event, opts.Buffer),
		RetryQueue: make(chan Event, retrySize),
		handler:    handler,
		opts:       opts,
		log:        log,
		quit:       make(chan struct{}),
	}
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	// 启动重试处理协程
	p.wg.Add(1)
	go p.retryWorker()
	p.log.Info("worker pool started", zap.Int("workers", p.opts.Workers))
}

// Stop 停止工作池，已入队的事件会先处理完
func (p *WorkerPool) Stop() {
	p.once.Do(func() {
		close(p.quit)
		p.wg.Wait()
		p.log.Info("worker pool stopped")
	})
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case e := <-p.TaskQueue:
			p.process(id, e)
		case <-p.quit:
			// 退出前处理剩余任务
			for {
				select {
				case e := <-p.TaskQueue:
					p.process(id, e)
				default:
					return
				}
			}
		}
	}
}

func (p *WorkerPool) process(id int, e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), p.opts.Timeout)
	defer cancel()

	err := p.handler.Handle(ctx, e)
	if err == nil {
		metrics.RecordAuditJob("ok")
		return
	}

	p.log.Warn("event handling failed",
		zap.Int("worker", id),
		zap.String("entity", e.Entity),
		zap.String("entity_id", e.EntityID),
		zap.String("action", e.Action),
		zap.Int("retry", e.Retry),
		zap.Error(err),
	)

	// 如果未达到最大重试次数，加入重试队列
	if e.Retry < p.opts.MaxRetry {
		e.Retry++
		select {
		case p.RetryQueue <- e:
			metrics.RecordAuditJob("retry")
		default:
			p.deadLetter(e, err)
		}
		return
	}
	p.deadLetter(e, err)
}

func (p *WorkerPool) retryWorker() {
	defer p.wg.Done()
	for {
		select {
		case e := <-p.RetryQueue:
			// 延迟重试，避免立即重试
			select {
			case <-time.After(time.Duration(e.Retry) * p.opts.RetryDelay):
			case <-p.quit:
				p.deadLetter(e, nil)
				continue
			}

			select {
			case p.TaskQueue <- e:
			default:
				p.deadLetter(e, nil)
			}
		case <-p.quit:
			return
		}
	}
}

// deadLetter 记录最终失败的事件
func (p *WorkerPool) deadLetter(e Event, err error) {
	metrics.RecordAuditJob("dropped")
	p.log.Error("event dropped",
		zap.String("entity", e.Entity),
		zap.String("entity_id", e.EntityID),
		zap.String("action", e.Action),
		zap.String("from", e.From),
		zap.String("to", e.To),
		zap.Int("retry", e.Retry),
		zap.Error(err),
	)
}

// Submit 投递事件，队列满时直接丢弃并记录
func (p *WorkerPool) Submit(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	select {
	case <-p.quit:
		p.deadLetter(e, nil)
		return
	default:
	}

	select {
	case p.TaskQueue <- e:
	default:
		p.deadLetter(e, nil)
	}
}
