package freelist_test

import (
	"testing"

	"github.com/ajitpratap0/freelist/pkg/freelist"
)

type frame struct {
	seq     uint64
	flags   uint32
	payload [256]byte
}

func BenchmarkAcquireRelease(b *testing.B) {
	pool, err := freelist.New[frame](1024)
	if err != nil {
		b.Fatal(err)
	}
	defer pool.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ptr, err := pool.Acquire()
		if err != nil {
			b.Fatal(err)
		}
		if err := pool.Release(ptr); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAcquireReleaseValidated(b *testing.B) {
	pool, err := freelist.New[frame](1024, freelist.WithValidation[frame]())
	if err != nil {
		b.Fatal(err)
	}
	defer pool.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ptr, err := pool.Acquire()
		if err != nil {
			b.Fatal(err)
		}
		if err := pool.Release(ptr); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkConstructDestruct(b *testing.B) {
	pool, err := freelist.New[frame](1024)
	if err != nil {
		b.Fatal(err)
	}
	defer pool.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ptr, err := pool.Construct(func(f *frame) error {
			f.seq = uint64(i)
			return nil
		})
		if err != nil {
			b.Fatal(err)
		}
		if err := pool.DestructAndRelease(ptr); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkThreadSafeParallel(b *testing.B) {
	pool, err := freelist.New[frame](4096, freelist.WithThreadSafety[frame]())
	if err != nil {
		b.Fatal(err)
	}
	defer pool.Close()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			ptr, err := pool.Acquire()
			if err != nil {
				// Exhaustion under heavy parallelism is traffic, not failure.
				continue
			}
			if err := pool.Release(ptr); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

func BenchmarkOffHeapAcquireRelease(b *testing.B) {
	pool, err := freelist.New[frame](1024, freelist.WithOffHeap[frame]())
	if err != nil {
		b.Fatal(err)
	}
	defer pool.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ptr, err := pool.Acquire()
		if err != nil {
			b.Fatal(err)
		}
		if err := pool.Release(ptr); err != nil {
			b.Fatal(err)
		}
	}
}
