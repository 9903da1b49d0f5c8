package cmudict

import "sync"

// Lazy loads a dictionary on first use. Concurrent callers block until the
// single load finishes and then all observe the same result.
type Lazy struct {
	once sync.Once
	load func() (*Dictionary, error)
	dict *Dictionary
	err  error
}

// NewLazy returns a Lazy that calls load at most once.
func NewLazy(load func() (*Dictionary, error)) *Lazy {
	return &Lazy{load: load}
}

// LazyFile returns a Lazy that loads the dictionary file at path.
func LazyFile(path string) *Lazy {
	return NewLazy(func() (*Dictionary, error) {
		return Load(path)
	})
}

// Get returns the loaded dictionary, loading it on the first call.
func (l *Lazy) Get() (*Dictionary, error) {
	l.once.Do(func() {
		l.dict, l.err = l.load()
	})
	return l.dict, l.err
}
