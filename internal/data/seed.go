package data

import (
	"context"
	"fmt"
)

// SeedData returns example books to pre-populate an empty store.
func SeedData() []Book {
	return []Book{
		{Title: "The Go Programming Language", Author: "Alan A. A. Donovan"},
		{Title: "Introducing Go", Author: "Caleb Doxsey"},
		{Title: "Concurrency in Go", Author: "Katherine Cox-Buday"},
		{Title: "Go in Practice", Author: "Matt Butcher"},
	}
}

// Seed inserts SeedData into store when it holds no books yet.
// It returns the number of books inserted.
func Seed(ctx context.Context, store BookStore) (int, error) {
	existing, err := store.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	seed := SeedData()
	for i := range seed {
		if err := store.Create(ctx, &seed[i]); err != nil {
			return i, fmt.Errorf("seed %q: %w", seed[i].Title, err)
		}
	}
	return len(seed), nil
}
