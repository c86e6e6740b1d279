package sluggable_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sluggable/pkg/sluggable"
)

// countingLookup wraps a SiblingLookup and counts Fetch calls.
type countingLookup struct {
	next  sluggable.SiblingLookup
	err   error
	calls atomic.Int32
}

func (l *countingLookup) Fetch(ctx context.Context, entityType, excludeID string) (sluggable.SiblingSet, error) {
	l.calls.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	return l.next.Fetch(ctx, entityType, excludeID)
}

// recordingLocker counts lock acquisitions per key.
type recordingLocker struct {
	keys     []string
	err      error
	released int
	mu       sync.Mutex
}

func (l *recordingLocker) Lock(_ context.Context, key string) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.keys = append(l.keys, key)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released++
		return nil
	}, nil
}

func TestGenerator_Slug(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("excludes the record itself", func(t *testing.T) {
		t.Parallel()

		store := sluggable.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "articles", "1", "hello-world"))

		gen := sluggable.New(store)

		got, err := gen.Slug(ctx, "articles", "1", titleConfig, titleState("Hello World"))
		require.NoError(t, err)
		assert.Equal(t, "hello-world", got)

		got, err = gen.Slug(ctx, "articles", "2", titleConfig, titleState("Hello World"))
		require.NoError(t, err)
		assert.Equal(t, "hello-world-1", got)
	})

	t.Run("other entity types do not collide", func(t *testing.T) {
		t.Parallel()

		store := sluggable.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "tags", "1", "hello-world"))

		got, err := sluggable.New(store).Slug(ctx, "articles", "", titleConfig, titleState("Hello World"))
		require.NoError(t, err)
		assert.Equal(t, "hello-world", got)
	})

	t.Run("soft-deleted records keep their slug reserved", func(t *testing.T) {
		t.Parallel()

		store := sluggable.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "articles", "1", "hello-world"))
		require.NoError(t, store.SoftDelete(ctx, "articles", "1"))

		got, err := sluggable.New(store).Slug(ctx, "articles", "2", titleConfig, titleState("Hello World"))
		require.NoError(t, err)
		assert.Equal(t, "hello-world-1", got)
	})

	t.Run("unchanged slug skips lookup", func(t *testing.T) {
		t.Parallel()

		lookup := &countingLookup{next: sluggable.NewMemoryStore()}
		state := sluggable.State{Current: "kept", Changed: false}

		got, err := sluggable.New(lookup).Slug(ctx, "articles", "1", titleConfig, state)
		require.NoError(t, err)
		assert.Equal(t, "kept", got)
		assert.Zero(t, lookup.calls.Load())
	})

	t.Run("configuration error skips lookup", func(t *testing.T) {
		t.Parallel()

		lookup := &countingLookup{next: sluggable.NewMemoryStore()}

		_, err := sluggable.New(lookup).Slug(ctx, "articles", "1", sluggable.Config{}, titleState("x"))
		require.ErrorIs(t, err, sluggable.ErrConfiguration)
		assert.Zero(t, lookup.calls.Load())
	})

	t.Run("lookup failure is wrapped", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		lookup := &countingLookup{err: boom}

		_, err := sluggable.New(lookup).Slug(ctx, "articles", "1", titleConfig, titleState("x"))
		require.ErrorIs(t, err, sluggable.ErrLookupFailed)
		assert.ErrorIs(t, err, boom)
	})
}

func TestGenerator_Assign(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("persists derived slug", func(t *testing.T) {
		t.Parallel()

		store := sluggable.NewMemoryStore()
		gen := sluggable.New(store)

		for i, id := range []string{"a", "b", "c"} {
			got, err := gen.Assign(ctx, "articles", id, titleConfig, titleState("Hello World"),
				func(ctx context.Context, s string) error {
					return store.Put(ctx, "articles", id, s)
				})
			require.NoError(t, err)

			want := []string{"hello-world", "hello-world-1", "hello-world-2"}[i]
			assert.Equal(t, want, got)

			stored, ok := store.Get("articles", id)
			require.True(t, ok)
			assert.Equal(t, want, stored)
		}
	})

	t.Run("unchanged slug is persisted as is", func(t *testing.T) {
		t.Parallel()

		lookup := &countingLookup{next: sluggable.NewMemoryStore()}
		var persisted string

		got, err := sluggable.New(lookup).Assign(ctx, "articles", "1", titleConfig,
			sluggable.State{Current: "kept"},
			func(_ context.Context, s string) error {
				persisted = s
				return nil
			})
		require.NoError(t, err)
		assert.Equal(t, "kept", got)
		assert.Equal(t, "kept", persisted)
		assert.Zero(t, lookup.calls.Load())
	})

	t.Run("conflict triggers re-derivation", func(t *testing.T) {
		t.Parallel()

		store := sluggable.NewMemoryStore()
		lookup := &countingLookup{next: store}
		gen := sluggable.New(lookup)

		var attempts []string
		got, err := gen.Assign(ctx, "articles", "1", titleConfig, titleState("Hello World"),
			func(ctx context.Context, s string) error {
				attempts = append(attempts, s)
				if len(attempts) == 1 {
					// A concurrent writer took the slug between lookup and write,
					// and the lookup still does not see it.
					return errors.Join(sluggable.ErrSlugConflict, errors.New("duplicate key"))
				}
				return store.Put(ctx, "articles", "1", s)
			})
		require.NoError(t, err)
		assert.Equal(t, []string{"hello-world", "hello-world-1"}, attempts)
		assert.Equal(t, "hello-world-1", got)
		assert.EqualValues(t, 2, lookup.calls.Load())
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		t.Parallel()

		gen := sluggable.New(sluggable.NewMemoryStore(), sluggable.WithMaxAttempts(3))

		calls := 0
		_, err := gen.Assign(ctx, "articles", "1", titleConfig, titleState("Hello"),
			func(context.Context, string) error {
				calls++
				return sluggable.ErrSlugConflict
			})
		require.ErrorIs(t, err, sluggable.ErrTooManyConflicts)
		assert.Equal(t, 3, calls)
	})

	t.Run("other persist errors are not retried", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("connection reset")
		calls := 0
		_, err := sluggable.New(sluggable.NewMemoryStore()).Assign(ctx, "articles", "1", titleConfig, titleState("Hello"),
			func(context.Context, string) error {
				calls++
				return boom
			})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("configuration error never persists", func(t *testing.T) {
		t.Parallel()

		called := false
		_, err := sluggable.New(sluggable.NewMemoryStore()).Assign(ctx, "articles", "1",
			sluggable.Config{SourceFields: []string{"slug"}}, titleState("Hello"),
			func(context.Context, string) error {
				called = true
				return nil
			})
		require.ErrorIs(t, err, sluggable.ErrConfiguration)
		assert.False(t, called)
	})

	t.Run("nil persist", func(t *testing.T) {
		t.Parallel()

		_, err := sluggable.New(sluggable.NewMemoryStore()).Assign(ctx, "articles", "1", titleConfig, titleState("Hello"), nil)
		require.ErrorIs(t, err, sluggable.ErrNilPersist)
	})

	t.Run("lock is taken per entity type and released", func(t *testing.T) {
		t.Parallel()

		locker := &recordingLocker{}
		gen := sluggable.New(sluggable.NewMemoryStore(), sluggable.WithLocker(locker))

		_, err := gen.Assign(ctx, "articles", "1", titleConfig, titleState("Hello"),
			func(context.Context, string) error { return nil })
		require.NoError(t, err)

		assert.Equal(t, []string{"sluggable:articles"}, locker.keys)
		assert.Equal(t, 1, locker.released)
	})

	t.Run("lock failure aborts", func(t *testing.T) {
		t.Parallel()

		locker := &recordingLocker{err: context.DeadlineExceeded}
		gen := sluggable.New(sluggable.NewMemoryStore(), sluggable.WithLocker(locker))

		_, err := gen.Assign(ctx, "articles", "1", titleConfig, titleState("Hello"),
			func(context.Context, string) error { return nil })
		require.ErrorIs(t, err, sluggable.ErrLockFailed)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestGenerator_AssignConcurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	run := func(t *testing.T, opts ...sluggable.Option) {
		t.Helper()

		store := sluggable.NewMemoryStore()
		gen := sluggable.New(store, append(opts, sluggable.WithMaxAttempts(100))...)

		const writers = 20
		results := make([]string, writers)
		var wg sync.WaitGroup
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id := string(rune('a' + i))
				s, err := gen.Assign(ctx, "articles", id, titleConfig, titleState("Same Title"),
					func(ctx context.Context, s string) error {
						return store.Put(ctx, "articles", id, s)
					})
				assert.NoError(t, err)
				results[i] = s
			}()
		}
		wg.Wait()

		seen := make(map[string]bool, writers)
		for _, s := range results {
			assert.False(t, seen[s], "duplicate slug %q", s)
			seen[s] = true
		}
		assert.Len(t, seen, writers)
	}

	t.Run("unique index backstop", func(t *testing.T) {
		t.Parallel()
		run(t)
	})

	t.Run("serialized by locker", func(t *testing.T) {
		t.Parallel()
		run(t, sluggable.WithLocker(sluggable.NewMutexLocker()))
	})
}

func TestGenerator_Locked(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	noop := func(context.Context, string) error { return nil }

	t.Run("assign reuses the held lock", func(t *testing.T) {
		t.Parallel()

		locker := &recordingLocker{}
		gen := sluggable.New(sluggable.NewMemoryStore(), sluggable.WithLocker(locker))

		err := gen.Locked(ctx, "articles", func(ctx context.Context) error {
			_, err := gen.Assign(ctx, "articles", "1", titleConfig, titleState("Hello"), noop)
			require.NoError(t, err)
			assert.Zero(t, locker.released, "lock stays held after Assign returns")
			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"sluggable:articles"}, locker.keys)
		assert.Equal(t, 1, locker.released)
	})

	t.Run("other entity types take their own lock", func(t *testing.T) {
		t.Parallel()

		locker := &recordingLocker{}
		gen := sluggable.New(sluggable.NewMemoryStore(), sluggable.WithLocker(locker))

		err := gen.Locked(ctx, "articles", func(ctx context.Context) error {
			_, err := gen.Assign(ctx, "tags", "1", titleConfig, titleState("Hello"), noop)
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"sluggable:articles", "sluggable:tags"}, locker.keys)
		assert.Equal(t, 2, locker.released)
	})

	t.Run("does not deadlock with a non-reentrant locker", func(t *testing.T) {
		t.Parallel()

		gen := sluggable.New(sluggable.NewMemoryStore(), sluggable.WithLocker(sluggable.NewMutexLocker()))

		tctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()

		err := gen.Locked(tctx, "articles", func(ctx context.Context) error {
			_, err := gen.Assign(ctx, "articles", "1", titleConfig, titleState("Hello"), noop)
			return err
		})
		require.NoError(t, err)
	})

	t.Run("writes after assign stay serialized", func(t *testing.T) {
		t.Parallel()

		store := sluggable.NewMemoryStore()
		gen := sluggable.New(store, sluggable.WithLocker(sluggable.NewMutexLocker()))

		assigned := make(chan struct{})
		var commitErr error
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			commitErr = gen.Locked(ctx, "articles", func(ctx context.Context) error {
				s, err := gen.Assign(ctx, "articles", "a", titleConfig, titleState("Hello"), noop)
				if err != nil {
					return err
				}
				close(assigned)
				// The slug is stored only at "commit", after Assign returned.
				time.Sleep(20 * time.Millisecond)
				return store.Put(ctx, "articles", "a", s)
			})
		}()

		<-assigned
		var attempts atomic.Int32
		got, err := gen.Assign(ctx, "articles", "b", titleConfig, titleState("Hello"),
			func(ctx context.Context, s string) error {
				attempts.Add(1)
				return store.Put(ctx, "articles", "b", s)
			})
		wg.Wait()

		require.NoError(t, commitErr)
		require.NoError(t, err)
		assert.Equal(t, "hello-1", got)
		assert.EqualValues(t, 1, attempts.Load(), "no conflict retry needed")
	})

	t.Run("without locker fn runs", func(t *testing.T) {
		t.Parallel()

		called := false
		err := sluggable.New(sluggable.NewMemoryStore()).Locked(ctx, "articles", func(context.Context) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("lock failure skips fn", func(t *testing.T) {
		t.Parallel()

		locker := &recordingLocker{err: context.DeadlineExceeded}
		gen := sluggable.New(sluggable.NewMemoryStore(), sluggable.WithLocker(locker))

		err := gen.Locked(ctx, "articles", func(context.Context) error {
			t.Fatal("fn must not run")
			return nil
		})
		require.ErrorIs(t, err, sluggable.ErrLockFailed)
	})
}

func TestMutexLocker(t *testing.T) {
	t.Parallel()

	t.Run("blocks second holder until release", func(t *testing.T) {
		t.Parallel()

		locker := sluggable.NewMutexLocker()
		unlock, err := locker.Lock(context.Background(), "k")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(ctx, "k")
		require.ErrorIs(t, err, context.DeadlineExceeded)

		require.NoError(t, unlock(context.Background()))
		require.NoError(t, unlock(context.Background()), "release is idempotent")

		unlock2, err := locker.Lock(context.Background(), "k")
		require.NoError(t, err)
		require.NoError(t, unlock2(context.Background()))
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()

		locker := sluggable.NewMutexLocker()
		u1, err := locker.Lock(context.Background(), "a")
		require.NoError(t, err)
		u2, err := locker.Lock(context.Background(), "b")
		require.NoError(t, err)
		require.NoError(t, u1(context.Background()))
		require.NoError(t, u2(context.Background()))
	})
}
