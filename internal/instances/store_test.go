package instances

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmlauncher/pkg/types"
)

func inst(name string, props map[string]string) Instance {
	return Instance{Name: name, Family: "Echo", Properties: props}
}

func TestStore_AddDuplicate(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(inst("E1", map[string]string{"path": "v1"})))
	err := s.Add(inst("E1", nil))
	require.Error(t, err)
	assert.True(t, IsDuplicateName(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, 1, s.Len())
}

func TestStore_AddInvalid(t *testing.T) {
	s := NewStore()
	assert.True(t, IsInvalid(s.Add(Instance{Family: "Echo"})))
	assert.True(t, IsInvalid(s.Add(Instance{Name: "x"})))
	assert.Equal(t, 0, s.Len())
}

func TestStore_UpdateKeepsIdentity(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(inst("E1", map[string]string{"path": "v1"})))
	require.NoError(t, s.Update("E1", Instance{Name: "renamed", Family: "Other", Properties: map[string]string{"path": "v2"}}))

	got, err := s.Get("E1")
	require.NoError(t, err)
	assert.Equal(t, "E1", got.Name)
	assert.Equal(t, "Echo", got.Family)
	assert.Equal(t, "v2", got.Properties["path"])

	err = s.Update("missing", inst("missing", nil))
	assert.True(t, IsNotFound(err))
}

func TestStore_RemoveIdempotent(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(inst("a", nil)))
	require.NoError(t, s.Add(inst("b", nil)))
	require.NoError(t, s.Add(inst("c", nil)))
	s.Remove("b")
	s.Remove("b")
	s.Remove("never")
	names := []string{}
	for _, i := range s.List() {
		names = append(names, i.Name)
	}
	assert.Equal(t, []string{"a", "c"}, names)
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := NewStore()
	props := map[string]string{"path": "v1"}
	require.NoError(t, s.Add(inst("E1", props)))
	props["path"] = "mutated"

	got, err := s.Get("E1")
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Properties["path"])
	got.Properties["path"] = "mutated again"

	again, _ := s.Get("E1")
	assert.Equal(t, "v1", again.Properties["path"])
}

func TestStore_SetProperty(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(inst("E1", map[string]string{"path": "v1/"})))
	var hooks int
	s.OnChange(func(Snapshot) { hooks++ })

	require.NoError(t, s.SetProperty("E1", "path", "v1"))
	require.NoError(t, s.SetProperty("E1", "path", "v1"))
	assert.Equal(t, 1, hooks)

	got, _ := s.Get("E1")
	assert.Equal(t, "v1", got.Properties["path"])
	assert.True(t, IsNotFound(s.SetProperty("nope", "k", "v")))
}

func TestStore_SnapshotRestore(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(inst("b", map[string]string{"k": "1"})))
	require.NoError(t, s.Add(inst("a", map[string]string{"k": "2"})))
	s.SetPrompts(types.PromptPair{System: "s", User: "u"})
	snap := s.Snapshot()

	r := NewStore()
	var hooks int
	r.OnChange(func(Snapshot) { hooks++ })
	require.NoError(t, r.Restore(snap))
	assert.Equal(t, 0, hooks)
	assert.Equal(t, snap, r.Snapshot())
	assert.Equal(t, "b", r.List()[0].Name)
	assert.Equal(t, types.PromptPair{System: "s", User: "u"}, r.Prompts())
}

func TestStore_RestoreRejectsDuplicates(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(inst("keep", nil)))
	err := s.Restore(Snapshot{Instances: []Instance{inst("x", nil), inst("x", nil)}})
	require.Error(t, err)
	assert.True(t, IsInvalid(err))
	assert.Equal(t, 1, s.Len())
}

func TestStore_OnChangeFiresPerMutation(t *testing.T) {
	s := NewStore()
	var snaps []Snapshot
	s.OnChange(func(snap Snapshot) { snaps = append(snaps, snap) })

	require.NoError(t, s.Add(inst("a", nil)))
	require.NoError(t, s.Update("a", inst("a", map[string]string{"k": "v"})))
	s.Remove("a")
	s.Remove("a")
	s.SetPrompts(types.PromptPair{User: "u"})
	s.SetPrompts(types.PromptPair{User: "u"})

	require.Len(t, snaps, 4)
	assert.Len(t, snaps[0].Instances, 1)
	assert.Empty(t, snaps[2].Instances)
	assert.Equal(t, "u", snaps[3].Prompts.User)
}

// slowPersister delays its first Save until the test lets it finish.
type slowPersister struct {
	*MemoryPersister
	once    sync.Once
	started chan struct{}
}

func (p *slowPersister) Save(ctx context.Context, snap Snapshot) error {
	first := false
	p.once.Do(func() { first = true })
	if first {
		close(p.started)
		time.Sleep(100 * time.Millisecond)
	}
	return p.MemoryPersister.Save(ctx, snap)
}

func TestOpen_ConcurrentMutationsPersistLatest(t *testing.T) {
	ctx := context.Background()
	p := &slowPersister{MemoryPersister: NewMemoryPersister(Snapshot{}), started: make(chan struct{})}
	s, err := Open(ctx, p, zerolog.Nop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Add(inst("a", nil)))
	}()
	<-p.started
	require.NoError(t, s.Add(inst("b", nil)))
	wg.Wait()

	saved, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), saved)
	assert.Len(t, saved.Instances, 2)
}
