package campaign

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"donorcrm/internal/domain"
	"donorcrm/internal/infra/events"
	"donorcrm/internal/providers/mail"
)

type completion struct {
	id     uuid.UUID
	status string
	errMsg string
	delay  time.Duration
}

type fakeJobs struct {
	mu        sync.Mutex
	queue     []*domain.EmailJob
	enqueued  []domain.EmailJob
	completed []completion
	requeued  []completion
	staleSeen []time.Duration
}

func (f *fakeJobs) Enqueue(_ context.Context, job domain.EmailJob) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job.ID = uuid.New()
	f.enqueued = append(f.enqueued, job)
	return job.ID, nil
}

func (f *fakeJobs) Claim(_ context.Context, staleAfter time.Duration) (*domain.EmailJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.staleSeen = append(f.staleSeen, staleAfter)
	if len(f.queue) == 0 {
		return nil, nil
	}
	job := f.queue[0]
	f.queue = f.queue[1:]
	return job, nil
}

func (f *fakeJobs) Complete(_ context.Context, id uuid.UUID, status, errMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, completion{id: id, status: status, errMsg: errMsg})
	return nil
}

func (f *fakeJobs) Requeue(_ context.Context, id uuid.UUID, errMsg string, delay time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requeued = append(f.requeued, completion{id, domain.EmailJobQueued, errMsg, delay})
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}
