package scheduler

import "sync"

// registry 按注册顺序保存执行单元.
//
// 轮询通过 snapshot 迭代，Schedule 可以在轮询期间并发追加.
type registry struct {
	mu    sync.RWMutex
	units []*ExecutableUnit
	index map[string]*ExecutableUnit
}

func newRegistry() *registry {
	return &registry{index: make(map[string]*ExecutableUnit)}
}

func (r *registry) add(u *ExecutableUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := u.job.Name()
	if _, exists := r.index[name]; exists {
		return ErrJobExists
	}
	r.units = append(r.units, u)
	r.index[name] = u
	return nil
}

func (r *registry) get(name string) (*ExecutableUnit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.index[name]
	return u, ok
}

// remove 按名称移除.
func (r *registry) remove(name string) (*ExecutableUnit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.index[name]
	if !ok {
		return nil, false
	}
	r.delete(u)
	return u, true
}

// removeUnit 只在 u 仍是该名称的当前单元时移除.
//
// 防止轮询基于旧快照移除同名的新注册单元.
func (r *registry) removeUnit(u *ExecutableUnit) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index[u.job.Name()] != u {
		return false
	}
	r.delete(u)
	return true
}

// delete 调用方需持有写锁.
func (r *registry) delete(u *ExecutableUnit) {
	delete(r.index, u.job.Name())
	for i, cur := range r.units {
		if cur == u {
			r.units = append(r.units[:i], r.units[i+1:]...)
			break
		}
	}
}

func (r *registry) snapshot() []*ExecutableUnit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	units := make([]*ExecutableUnit, len(r.units))
	copy(units, r.units)
	return units
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.units)
}

// executingSet 正在执行的任务名称集合.
//
// 轮询在派发前 TryAdd，任务结束时 Remove，同一名称最多一个执行.
type executingSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newExecutingSet() *executingSet {
	return &executingSet{ids: make(map[string]struct{})}
}

// TryAdd 名称不存在时加入并返回 true.
func (s *executingSet) TryAdd(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[name]; ok {
		return false
	}
	s.ids[name] = struct{}{}
	return true
}

func (s *executingSet) Remove(name string) {
	s.mu.Lock()
	delete(s.ids, name)
	s.mu.Unlock()
}

func (s *executingSet) Contains(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[name]
	return ok
}

func (s *executingSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
