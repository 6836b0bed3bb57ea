package httpx

import (
	"context"
	"strings"

	"github.com/aretw0/arbor/pkg/ports"
)

const (
	flashCur  = "flash:cur:"
	flashNext = "flash:next:"
)

// flashStore gives flash semantics to a slice of its backing store: reads
// see the current generation, writes land in the next one, and Promote
// (called at request start) retires the current generation and makes the
// next one current. Values therefore survive exactly one redirect.
type flashStore struct {
	backing ports.AttributeStore
}

var _ ports.AttributeStore = (*flashStore)(nil)

func newFlashStore(backing ports.AttributeStore) *flashStore {
	return &flashStore{backing: backing}
}

// Promote rotates the generations. Current-generation values not re-set
// during the previous request disappear.
func (f *flashStore) Promote(ctx context.Context) error {
	names, err := f.backing.Names(ctx)
	if err != nil {
		return err
	}

	for _, name := range names {
		if strings.HasPrefix(name, flashCur) {
			if err := f.backing.Delete(ctx, name); err != nil {
				return err
			}
		}
	}
	for _, name := range names {
		key, ok := strings.CutPrefix(name, flashNext)
		if !ok {
			continue
		}
		val, found, err := f.backing.Get(ctx, name)
		if err != nil {
			return err
		}
		if found {
			if err := f.backing.Set(ctx, flashCur+key, val); err != nil {
				return err
			}
		}
		if err := f.backing.Delete(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (f *flashStore) Get(ctx context.Context, name string) (any, bool, error) {
	return f.backing.Get(ctx, flashCur+name)
}

func (f *flashStore) Set(ctx context.Context, name string, value any) error {
	return f.backing.Set(ctx, flashNext+name, value)
}

// Delete removes the name from both generations so a removal in one
// request cannot resurrect on the next.
func (f *flashStore) Delete(ctx context.Context, name string) error {
	if err := f.backing.Delete(ctx, flashCur+name); err != nil {
		return err
	}
	return f.backing.Delete(ctx, flashNext+name)
}

func (f *flashStore) Names(ctx context.Context) ([]string, error) {
	all, err := f.backing.Names(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for _, name := range all {
		if key, ok := strings.CutPrefix(name, flashCur); ok {
			names = append(names, key)
		}
	}
	return names, nil
}
