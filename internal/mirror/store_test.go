package mirror

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// memBackend is an in-memory Backend fake for exercising fan-out/fallback
// logic without touching the filesystem.
type memBackend struct {
	mu       sync.Mutex
	label    string
	data     map[string][]byte
	failNext bool
}

func newMemBackend(label string) *memBackend {
	return &memBackend{label: label, data: make(map[string][]byte)}
}

func (b *memBackend) Label() string { return b.label }

func (b *memBackend) ReadAll(ctx context.Context, id string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.data[id]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(d))
	copy(out, d)
	return out, true, nil
}

func (b *memBackend) Write(ctx context.Context, id string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failNext {
		b.failNext = false
		return errors.New("simulated write failure")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	b.data[id] = cp
	return nil
}

func (b *memBackend) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, id)
	return nil
}

func (b *memBackend) Exists(ctx context.Context, id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.data[id]
	return ok, nil
}

func (b *memBackend) Size(ctx context.Context, id string) (int64, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.data[id]
	if !ok {
		return 0, false, nil
	}
	return int64(len(d)), true, nil
}

func tier(b *memBackend, vt VolumeType) Tier {
	return Tier{Backend: b, Location: Location{Label: b.label, VolumeType: vt, Priority: DefaultPriority(vt)}}
}

func TestMirrorWriteThenReadFromEveryTier(t *testing.T) {
	primary := newMemBackend("primary")
	m1 := newMemBackend("mirror1")
	gl := newMemBackend("glacier1")

	store := New(Config{
		Primary:  tier(primary, VolumePrimary),
		Mirrors:  []Tier{tier(m1, VolumeMirror)},
		Glaciers: []Tier{tier(gl, VolumeGlacier)},
	})

	ctx := context.Background()
	data := []byte("payload")
	if err := store.Write(ctx, "id1", data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	for _, b := range []*memBackend{primary, m1, gl} {
		got, found, err := b.ReadAll(ctx, "id1")
		if err != nil || !found {
			t.Fatalf("%s: found=%v err=%v", b.label, found, err)
		}
		if string(got) != "payload" {
			t.Fatalf("%s: got %q, want %q", b.label, got, data)
		}
	}
}

func TestMirrorReadFallsBackThroughTiers(t *testing.T) {
	primary := newMemBackend("primary")
	m1 := newMemBackend("mirror1")
	gl := newMemBackend("glacier1")

	store := New(Config{
		Primary:  tier(primary, VolumePrimary),
		Mirrors:  []Tier{tier(m1, VolumeMirror)},
		Glaciers: []Tier{tier(gl, VolumeGlacier)},
	})

	ctx := context.Background()
	if err := store.Write(ctx, "id1", []byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	// Scenario 4: delete from primary and mirror, leave on glacier.
	_ = primary.Delete(ctx, "id1")
	_ = m1.Delete(ctx, "id1")

	got, found, err := store.Read(ctx, "id1")
	if err != nil || !found {
		t.Fatalf("Read: found=%v err=%v", found, err)
	}
	if string(got) != "payload" {
		t.Fatalf("Read = %q, want %q", got, "payload")
	}

	exists, err := store.Exists(ctx, "id1")
	if err != nil || !exists {
		t.Fatalf("Exists: %v, %v", exists, err)
	}
}

func TestMirrorMirrorWriteFailureIsSwallowed(t *testing.T) {
	primary := newMemBackend("primary")
	m1 := newMemBackend("mirror1")
	m1.failNext = true

	store := New(Config{
		Primary: tier(primary, VolumePrimary),
		Mirrors: []Tier{tier(m1, VolumeMirror)},
	})

	ctx := context.Background()
	if err := store.Write(ctx, "id1", []byte("payload")); err != nil {
		t.Fatalf("Write should not fail when a mirror write fails: %v", err)
	}

	got, found, _ := primary.ReadAll(ctx, "id1")
	if !found || string(got) != "payload" {
		t.Fatalf("primary should have the payload regardless of mirror failure")
	}
	if _, found, _ := m1.ReadAll(ctx, "id1"); found {
		t.Fatal("mirror1 should not have the payload after a simulated write failure")
	}
}

func TestMirrorPrimaryFailureSurfacesWhenConfigured(t *testing.T) {
	primary := newMemBackend("primary")
	primary.failNext = true

	store := New(Config{
		Primary:            tier(primary, VolumePrimary),
		FailOnPrimaryError: true,
	})

	ctx := context.Background()
	if err := store.Write(ctx, "id1", []byte("payload")); err == nil {
		t.Fatal("expected error when primary write fails and FailOnPrimaryError is set")
	}
}

func TestMirrorDeleteFansOutToAllTiers(t *testing.T) {
	primary := newMemBackend("primary")
	m1 := newMemBackend("mirror1")

	store := New(Config{
		Primary: tier(primary, VolumePrimary),
		Mirrors: []Tier{tier(m1, VolumeMirror)},
	})

	ctx := context.Background()
	if err := store.Write(ctx, "id1", []byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := store.Delete(ctx, "id1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	for _, b := range []*memBackend{primary, m1} {
		if _, found, _ := b.ReadAll(ctx, "id1"); found {
			t.Fatalf("%s: expected chunk gone after mirrored delete", b.label)
		}
	}
}

func TestMirrorSizeFromFirstTierThatHasIt(t *testing.T) {
	primary := newMemBackend("primary")
	gl := newMemBackend("glacier1")
	// Put data only on the glacier tier, bypassing the mirrored write path.
	_ = gl.Write(context.Background(), "id1", []byte("12345"))

	store := New(Config{
		Primary:  tier(primary, VolumePrimary),
		Glaciers: []Tier{tier(gl, VolumeGlacier)},
	})

	n, found, err := store.Size(context.Background(), "id1")
	if err != nil || !found {
		t.Fatalf("Size: found=%v err=%v", found, err)
	}
	if n != 5 {
		t.Fatalf("Size = %d, want 5", n)
	}
}
