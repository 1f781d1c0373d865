package blob

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Memory 测试用内存存储，记录释放过的引用
type Memory struct {
	mu       sync.Mutex
	objects  map[string][]byte
	released []string
	FailPut  error
}

func NewMemory() *Memory {
	return &Memory{objects: map[string][]byte{}}
}

func (m *Memory) Driver() Driver { return DriverMemory }

func (m *Memory) Put(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	if m.FailPut != nil {
		return "", m.FailPut
	}
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[k] = buf.Bytes()
	return k, nil
}

func (m *Memory) Release(ctx context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, ref)
	m.released = append(m.released, ref)
	return nil
}

func (m *Memory) Has(ref string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[ref]
	return ok
}

func (m *Memory) Released() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.released...)
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
