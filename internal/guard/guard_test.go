package guard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

type fakeStore struct {
	mu      sync.Mutex
	entries map[string]Fingerprint
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string]Fingerprint{}}
}

func key(hash string, role Role, scope string) string {
	return hash + "|" + string(role) + "|" + scope
}

func (f *fakeStore) InsertFingerprint(_ context.Context, fp Fingerprint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	k := key(fp.Hash, fp.Role, fp.Scope)
	if _, ok := f.entries[k]; ok {
		return ErrDuplicate
	}
	f.entries[k] = fp
	return nil
}

func (f *fakeStore) FindFingerprint(_ context.Context, hash string, role Role, scope string) (*Fingerprint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, ok := f.entries[key(hash, role, scope)]
	if !ok {
		return nil, ErrNotRegistered
	}
	return &fp, nil
}

func (f *fakeStore) DeleteFingerprint(_ context.Context, hash string, role Role, scope string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.entries, key(hash, role, scope))
	return nil
}

func TestHashIsStable(t *testing.T) {
	t.Parallel()

	a := Hash([]byte("resume"))
	if a != Hash([]byte("resume")) {
		t.Fatal("fingerprint must be deterministic")
	}
	if a == Hash([]byte("resume ")) {
		t.Fatal("different content must produce different fingerprints")
	}
	if len(a) != 64 {
		t.Fatalf("expected hex sha-256, got %q", a)
	}
}

func TestRegisterRejectsSecondIdenticalUpload(t *testing.T) {
	t.Parallel()

	g := New(newFakeStore(), zap.NewNop())
	ctx := context.Background()
	content := []byte("senior go engineer")

	first, err := g.Register(ctx, Upload{Name: "jd.pdf", Content: content}, RoleJobDescription, "")
	if err != nil || !first.Accepted {
		t.Fatalf("expected first upload to be accepted, got %+v, %v", first, err)
	}

	second, err := g.Register(ctx, Upload{Name: "jd-copy.pdf", Content: content}, RoleJobDescription, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Accepted || second.ExistingFile != "jd.pdf" {
		t.Fatalf("expected rejection naming jd.pdf, got %+v", second)
	}
	if second.Hash != first.Hash {
		t.Fatal("expected identical hashes")
	}
}

func TestRegisterScopesResumesByJobDescription(t *testing.T) {
	t.Parallel()

	g := New(newFakeStore(), zap.NewNop())
	ctx := context.Background()
	upload := Upload{Name: "cv.docx", Content: []byte("cv")}

	for _, jdID := range []string{"jd-1", "jd-2"} {
		res, err := g.Register(ctx, upload, RoleResume, jdID)
		if err != nil || !res.Accepted {
			t.Fatalf("expected acceptance for %s, got %+v, %v", jdID, res, err)
		}
	}

	res, err := g.Register(ctx, upload, RoleResume, "jd-1")
	if err != nil || res.Accepted {
		t.Fatalf("expected rejection on repeat for jd-1, got %+v, %v", res, err)
	}

	// same bytes as a job description live in their own scope
	res, err = g.Register(ctx, upload, RoleJobDescription, "")
	if err != nil || !res.Accepted {
		t.Fatalf("expected acceptance under jd role, got %+v, %v", res, err)
	}
}

func TestRegisterValidatesScope(t *testing.T) {
	t.Parallel()

	g := New(newFakeStore(), zap.NewNop())
	ctx := context.Background()
	upload := Upload{Name: "f", Content: []byte("x")}

	if _, err := g.Register(ctx, upload, RoleResume, " "); err == nil {
		t.Fatal("expected error for resume without job description")
	}
	if _, err := g.Register(ctx, upload, RoleJobDescription, "jd-1"); err == nil {
		t.Fatal("expected error for scoped job description")
	}
	if _, err := g.Register(ctx, upload, Role("cover-letter"), ""); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestRegisterPropagatesStoreFailures(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.err = errors.New("connection reset")

	_, err := New(store, zap.NewNop()).Register(context.Background(), Upload{Name: "f", Content: []byte("x")}, RoleJobDescription, "")
	if err == nil || errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected store failure, got %v", err)
	}
}

func TestReleaseAllowsResubmission(t *testing.T) {
	t.Parallel()

	g := New(newFakeStore(), zap.NewNop())
	ctx := context.Background()
	upload := Upload{Name: "cv.pdf", Content: []byte("cv")}

	res, err := g.Register(ctx, upload, RoleResume, "jd-1")
	if err != nil || !res.Accepted {
		t.Fatalf("unexpected result %+v, %v", res, err)
	}

	if err := g.Release(ctx, res.Hash, RoleResume, "jd-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err = g.Register(ctx, upload, RoleResume, "jd-1")
	if err != nil || !res.Accepted {
		t.Fatalf("expected acceptance after release, got %+v, %v", res, err)
	}
}

func TestRegisterConcurrentUploadsAcceptOnce(t *testing.T) {
	t.Parallel()

	g := New(newFakeStore(), zap.NewNop())
	upload := Upload{Name: "cv.pdf", Content: []byte("same bytes")}

	const workers = 32
	var accepted, rejected atomic.Int32
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := g.Register(context.Background(), upload, RoleResume, "jd-1")
			if err != nil {
				errs <- err
				return
			}
			if res.Accepted {
				accepted.Add(1)
			} else {
				rejected.Add(1)
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}

	if accepted.Load() != 1 || rejected.Load() != workers-1 {
		t.Fatalf("expected exactly one acceptance, got %d accepted and %d rejected", accepted.Load(), rejected.Load())
	}
}
