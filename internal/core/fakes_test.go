package core

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inovacc/rael/internal/apperr"
	"github.com/inovacc/rael/internal/model"
	"github.com/inovacc/rael/internal/provider"
)

type fakeProvider struct {
	mu sync.Mutex

	name    string
	users   map[string]*model.RemoteUser
	repos   map[string]*model.ProviderRepository
	nextID  int
	calls   []string

	createErr error
	fileErr   error
	deleteErr []error

	// afterCreate runs once the remote repository exists
	afterCreate func()
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		name:    "fake",
		users:   map[string]*model.RemoteUser{"alice": {ID: 1, UserName: "alice"}, "bob": {ID: 2, UserName: "bob"}},
		repos:   make(map[string]*model.ProviderRepository),
	}
}

func (f *fakeProvider) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeProvider) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) ResolveUser(_ context.Context, userName string) (*model.RemoteUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("ResolveUser " + userName)

	return f.users[userName], nil
}

func (f *fakeProvider) CreateRemoteRepository(_ context.Context, name, description string, isPrivate bool) (*model.ProviderRepository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("CreateRemoteRepository " + name)

	if f.createErr != nil {
		return nil, f.createErr
	}

	f.nextID++
	id := fmt.Sprintf("%d", 100+f.nextID)

	repo := &model.ProviderRepository{
		ID:       id,
		Name:     name,
		FullName: "org/" + name,
		CloneURL: "https://example.test/org/" + name + ".git",
		Private:  isPrivate,
	}
	f.repos[id] = repo

	if f.afterCreate != nil {
		f.afterCreate()
	}

	return repo, nil
}

func (f *fakeProvider) CreateFile(_ context.Context, id, path string, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("CreateFile " + id + " " + path)

	return f.fileErr
}

func (f *fakeProvider) DeleteRemoteRepository(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("DeleteRemoteRepository " + id)

	if err := ctx.Err(); err != nil {
		return err
	}

	if len(f.deleteErr) > 0 {
		err := f.deleteErr[0]
		f.deleteErr = f.deleteErr[1:]

		if err != nil {
			return err
		}
	}

	if _, ok := f.repos[id]; !ok {
		return provider.StatusError(f.name, "delete repository", http.StatusNotFound, "", nil)
	}

	delete(f.repos, id)

	return nil
}

func (f *fakeProvider) mutations() []string {
	var out []string

	for _, c := range f.Calls() {
		if len(c) > 6 && (c[:6] == "Create" || c[:6] == "Delete") {
			out = append(out, c)
		}
	}

	return out
}

// inspectingProvider adds the optional Inspector capability
type inspectingProvider struct {
	*fakeProvider
}

func (p inspectingProvider) GetRemoteRepository(_ context.Context, id string) (*model.ProviderRepository, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.record("GetRemoteRepository " + id)

	return p.repos[id], nil
}

type memRegistry struct {
	mu      sync.Mutex
	records []*model.RepositoryRecord

	createErr error
}

func (m *memRegistry) Create(_ context.Context, record model.RepositoryRecord) (*model.RepositoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return nil, m.createErr
	}

	for _, r := range m.records {
		if r.Status == model.StatusActive && r.Name == record.Name {
			return nil, &apperr.ConflictError{Reason: apperr.NameTaken, Subject: record.Name}
		}
	}

	now := time.Now().UTC()
	record.ID = uuid.NewString()
	record.Status = model.StatusActive
	record.CreatedAt = now
	record.UpdatedAt = now

	m.records = append(m.records, &record)
	out := record

	return &out, nil
}

func (m *memRegistry) FindActiveByName(_ context.Context, name string) (*model.RepositoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.records {
		if r.Status == model.StatusActive && r.Name == name {
			out := *r
			return &out, nil
		}
	}

	return nil, nil
}

func (m *memRegistry) FindByID(_ context.Context, id string) (*model.RepositoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.records {
		if r.ID == id {
			out := *r
			return &out, nil
		}
	}

	return nil, nil
}

func (m *memRegistry) MarkDeleted(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.records {
		if r.ID == id && r.Status == model.StatusActive {
			now := time.Now().UTC()
			r.Status = model.StatusDeleted
			r.DeletedAt = &now
			r.UpdatedAt = now

			return nil
		}
	}

	return &apperr.NotFoundError{Reason: apperr.RepositoryMissing, Subject: id}
}

func (m *memRegistry) ListActive(context.Context) ([]model.RepositoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.RepositoryRecord, 0, len(m.records))

	for _, r := range m.records {
		if r.Status == model.StatusActive {
			out = append(out, *r)
		}
	}

	return out, nil
}

type memJournal struct {
	mu      sync.Mutex
	seq     uint64
	entries map[uint64]model.ReconcileEntry

	appendErr error
}

func newMemJournal() *memJournal {
	return &memJournal{entries: make(map[uint64]model.ReconcileEntry)}
}

func (j *memJournal) Append(entry model.ReconcileEntry) (model.ReconcileEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.appendErr != nil {
		return entry, j.appendErr
	}

	j.seq++
	entry.Seq = j.seq
	j.entries[entry.Seq] = entry

	return entry, nil
}

func (j *memJournal) List() ([]model.ReconcileEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]model.ReconcileEntry, 0, len(j.entries))
	for _, e := range j.entries {
		out = append(out, e)
	}

	sort.Slice(out, func(a, b int) bool { return out[a].Seq < out[b].Seq })

	return out, nil
}

func (j *memJournal) RecordAttempt(seq uint64, lastErr string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	e, ok := j.entries[seq]
	if !ok {
		return fmt.Errorf("journal entry %d not found", seq)
	}

	e.Attempts++
	e.LastError = lastErr
	j.entries[seq] = e

	return nil
}

func (j *memJournal) Resolve(seq uint64) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	delete(j.entries, seq)

	return nil
}

type fakeCreds struct {
	identity *model.Identity
	err      error
}

func (c fakeCreds) Identity(context.Context) (*model.Identity, error) {
	return c.identity, c.err
}

type fakeGenerator struct {
	text string
	err  error

	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

var (
	alice = &model.Identity{ID: "id-alice", Email: "alice@example.com", UserName: "alice"}
	bob   = &model.Identity{ID: "id-bob", Email: "bob@example.com", UserName: "bob"}
	carol = &model.Identity{ID: "id-carol", Email: "carol@example.com", UserName: "carol"}
)
