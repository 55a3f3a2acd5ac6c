package tasks

import (
	"sync"
	"time"
)

const MaxLogsPerTask = 1000

// Manager schedules the gateway's background maintenance tasks
// (approval sweep, limiter sweep, audit retry flush) and keeps their
// recent run logs for the operator surface.
type Manager struct {
	tasks sync.Map
	stop  chan struct{}
	once  sync.Once
}

func NewManager() *Manager {
	return &Manager{stop: make(chan struct{})}
}

func (m *Manager) Register(name string, interval time.Duration, fn TaskFunc) {
	m.RegisterTask(TaskDefinition{Name: name, Interval: interval, Handler: fn})
}

func (m *Manager) RegisterTask(def TaskDefinition) {
	task := &RunnableTask{
		Name:     def.Name,
		Interval: def.Interval,
		Timeout:  def.Timeout,
		Handler:  def.Handler,
		Logs:     make([]LogEntry, 0),

		registeredAt: time.Now(),
	}
	m.tasks.Store(def.Name, task)

	if def.Interval > 0 {
		go m.scheduler(task)
	}
}

func (m *Manager) Trigger(name string) error {
	t, ok := m.tasks.Load(name)
	if !ok {
		return TaskNotFoundError{Name: name}
	}
	task := t.(*RunnableTask)
	go task.Run()
	return nil
}

func (m *Manager) ListStatus() []TaskStatus {
	var list []TaskStatus
	m.tasks.Range(func(key, value any) bool {
		task := value.(*RunnableTask)
		list = append(list, task.Status())
		return true
	})
	return list
}

func (m *Manager) GetLogs(name string) ([]LogEntry, error) {
	t, ok := m.tasks.Load(name)
	if !ok {
		return nil, TaskNotFoundError{Name: name}
	}
	task := t.(*RunnableTask)
	return task.GetLogs(), nil
}

// Stop halts all schedulers. Running task executions finish on their own.
func (m *Manager) Stop() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Manager) scheduler(task *RunnableTask) {
	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			task.Run()
		case <-m.stop:
			return
		}
	}
}
