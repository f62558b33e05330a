//go:build !integration

// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"trip-itinerary-ai/internal/domain"
	"trip-itinerary-ai/internal/domain/model"
	"trip-itinerary-ai/internal/domain/ports/adapter"
	"trip-itinerary-ai/internal/domain/ports/repository"
)

// ---- In-memory DraftRepository ----

type memDraftRepo struct {
	mu     sync.RWMutex
	drafts map[string]*model.Draft
}

func newMemDraftRepo(drafts ...*model.Draft) *memDraftRepo {
	r := &memDraftRepo{drafts: map[string]*model.Draft{}}
	for _, d := range drafts {
		r.drafts[d.ID] = d
	}
	return r
}

func (r *memDraftRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drafts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *memDraftRepo) LockByID(ctx context.Context, tx repository.Tx, id string) error {
	_, err := r.FindByID(ctx, tx, id)
	return err
}

// flakyDraftRepo fails the FindByID calls listed in failOn (1-based).
type flakyDraftRepo struct {
	*memDraftRepo
	mu     sync.Mutex
	calls  int
	failOn map[int]error
}

func (r *flakyDraftRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Draft, error) {
	r.mu.Lock()
	r.calls++
	err := r.failOn[r.calls]
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.memDraftRepo.FindByID(ctx, tx, id)
}

// ---- In-memory GenerationJobRepository ----

// memJobRepo enforces the single-active-job constraint the way the database
// unique index does.
type memJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*model.GenerationJob
	seq  []string // insertion order
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: map[string]*model.GenerationJob{}}
}

func cloneJob(j *model.GenerationJob) *model.GenerationJob {
	cp := *j
	cp.TargetDays = append([]int(nil), j.TargetDays...)
	cp.PartialDays = append([]int(nil), j.PartialDays...)
	return &cp
}

func (r *memJobRepo) Create(ctx context.Context, tx repository.Tx, job *model.GenerationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if !j.Status.IsActive() {
			continue
		}
		if j.DraftID == job.DraftID {
			return domain.ErrJobAlreadyRunning
		}
		if job.ItineraryID != nil && j.ItineraryID != nil && *j.ItineraryID == *job.ItineraryID {
			return domain.ErrJobAlreadyRunning
		}
	}
	r.jobs[job.ID] = cloneJob(job)
	r.seq = append(r.seq, job.ID)
	return nil
}

func (r *memJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneJob(j), nil
}

func (r *memJobRepo) FindActive(ctx context.Context, tx repository.Tx, draftID string, itineraryID *string) (*model.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.seq {
		j := r.jobs[id]
		if !j.Status.IsActive() {
			continue
		}
		if j.DraftID == draftID || (itineraryID != nil && j.ItineraryID != nil && *j.ItineraryID == *itineraryID) {
			return cloneJob(j), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memJobRepo) transition(job *model.GenerationJob, from model.GenerationJobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.jobs[job.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Status != from {
		return domain.ErrInvalidTransition
	}
	r.jobs[job.ID] = cloneJob(job)
	return nil
}

func (r *memJobRepo) MarkRunning(ctx context.Context, tx repository.Tx, job *model.GenerationJob) error {
	return r.transition(job, model.GenerationJobStatusQueued)
}

func (r *memJobRepo) Finish(ctx context.Context, tx repository.Tx, job *model.GenerationJob) error {
	return r.transition(job, job.PriorStatus())
}

func (r *memJobRepo) FetchQueued(ctx context.Context, tx repository.Tx) (*model.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.seq {
		if j := r.jobs[id]; j.Status == model.GenerationJobStatusQueued {
			return cloneJob(j), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memJobRepo) ListStuck(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.GenerationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.GenerationJob
	for _, id := range r.seq {
		j := r.jobs[id]
		running := j.Status == model.GenerationJobStatusRunning && j.StartedAt != nil && j.StartedAt.Before(cutoff)
		queued := j.Status == model.GenerationJobStatusQueued && j.CreatedAt.Before(cutoff)
		if running || queued {
			out = append(out, cloneJob(j))
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// put stores a job as-is, bypassing the admission rules.
func (r *memJobRepo) put(job *model.GenerationJob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = cloneJob(job)
	r.seq = append(r.seq, job.ID)
}

// ---- In-memory AuditRepository ----

type memAuditRepo struct {
	mu   sync.Mutex
	rows []*model.AIGenerationAudit
}

func (r *memAuditRepo) Append(ctx context.Context, tx repository.Tx, a *model.AIGenerationAudit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *memAuditRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.AIGenerationAudit, error) {
	return r.list(func(a *model.AIGenerationAudit) bool { return a.JobID == jobID }), nil
}

func (r *memAuditRepo) ListByCorrelation(ctx context.Context, tx repository.Tx, correlationID string) ([]*model.AIGenerationAudit, error) {
	return r.list(func(a *model.AIGenerationAudit) bool { return a.CorrelationID == correlationID }), nil
}

func (r *memAuditRepo) list(keep func(*model.AIGenerationAudit) bool) []*model.AIGenerationAudit {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.AIGenerationAudit
	for _, a := range r.rows {
		if keep(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RetryCount < out[j].RetryCount })
	return out
}

// attemptFailingAuditRepo rejects per-attempt rows, which are the ones
// written while the job is still RUNNING.
type attemptFailingAuditRepo struct {
	*memAuditRepo
}

func (r attemptFailingAuditRepo) Append(ctx context.Context, tx repository.Tx, a *model.AIGenerationAudit) error {
	if a.Status == model.GenerationJobStatusRunning {
		return errors.New("ERROR: unsupported Unicode escape sequence (SQLSTATE 22P05)")
	}
	return r.memAuditRepo.Append(ctx, tx, a)
}

// ---- Mock TransactionManager ----

// serialTxManager runs one transaction at a time, which is enough to model
// the row lock taken by the gate.
type serialTxManager struct {
	mu sync.Mutex
}

var _ repository.TransactionManager = (*serialTxManager)(nil)

func (m *serialTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, repository.NoTX)
}

// ---- In-memory Locker ----

type memLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func newMemLocker() *memLocker { return &memLocker{held: map[string]string{}} }

func (l *memLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", domain.ErrLockNotAcquired
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, nil
}

func (l *memLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] != token {
		return fmt.Errorf("unlock %s: token mismatch", key)
	}
	delete(l.held, key)
	return nil
}

// ---- Scripted provider ----

type providerReply struct {
	text string
	err  error
}

// scriptedProvider replays replies in order and repeats the last one.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []providerReply
	prompts []string
}

func newScriptedProvider(replies ...providerReply) *scriptedProvider {
	return &scriptedProvider{replies: replies}
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt, modelName string, temperature float64) (*adapter.GenerateResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := len(p.prompts)
	if idx >= len(p.replies) {
		idx = len(p.replies) - 1
	}
	p.prompts = append(p.prompts, prompt)
	reply := p.replies[idx]
	req, _ := json.Marshal(map[string]any{"model": modelName, "temperature": temperature})
	if reply.err != nil {
		return nil, reply.err
	}
	return &adapter.GenerateResult{Text: reply.text, RawResponse: reply.text, Request: req}, nil
}

func (p *scriptedProvider) calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.prompts...)
}

// ---- Recording sleeper ----

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
