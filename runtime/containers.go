package runtime

// MapEntry is one key/value pair of a dict in insertion order.
type MapEntry struct {
	Key   Value
	Value Value
}

// MapValue is an insertion ordered dict.
type MapValue struct {
	entries []MapEntry
	index   map[string]int
}

func NewMap() *MapValue {
	return &MapValue{index: map[string]int{}}
}

// MapOf builds a dict value from entries, later keys overwriting earlier ones.
func MapOf(entries ...MapEntry) (Value, error) {
	m := NewMap()
	for _, e := range entries {
		if err := m.Set(e.Key, e.Value); err != nil {
			return None, err
		}
	}
	return Value{MapType, m}, nil
}

func (m *MapValue) Len() int { return len(m.entries) }

func (m *MapValue) Get(key Value) (Value, bool, error) {
	k, err := HashKey(key)
	if err != nil {
		return None, false, err
	}
	if idx, ok := m.index[k]; ok {
		return m.entries[idx].Value, true, nil
	}
	return None, false, nil
}

func (m *MapValue) Set(key, value Value) error {
	k, err := HashKey(key)
	if err != nil {
		return err
	}
	if idx, ok := m.index[k]; ok {
		m.entries[idx].Value = value
		return nil
	}
	m.index[k] = len(m.entries)
	m.entries = append(m.entries, MapEntry{key, value})
	return nil
}

// Delete removes key and reports whether it was present.
func (m *MapValue) Delete(key Value) (bool, error) {
	k, err := HashKey(key)
	if err != nil {
		return false, err
	}
	idx, ok := m.index[k]
	if !ok {
		return false, nil
	}
	m.entries = append(m.entries[:idx], m.entries[idx+1:]...)
	delete(m.index, k)
	for i := idx; i < len(m.entries); i++ {
		hk, _ := HashKey(m.entries[i].Key)
		m.index[hk] = i
	}
	return true, nil
}

func (m *MapValue) Entries() []MapEntry {
	return append([]MapEntry{}, m.entries...)
}

func (m *MapValue) Keys() []Value {
	out := make([]Value, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Key
	}
	return out
}

func (m *MapValue) Values() []Value {
	out := make([]Value, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Value
	}
	return out
}

// SetValue is a set of hashable values.  Iteration follows insertion order.
type SetValue struct {
	m *MapValue
}

func NewSet() *SetValue {
	return &SetValue{m: NewMap()}
}

func SetOf(items ...Value) (Value, error) {
	s := NewSet()
	for _, item := range items {
		if err := s.Add(item); err != nil {
			return None, err
		}
	}
	return Value{SetType, s}, nil
}

func (s *SetValue) Len() int { return s.m.Len() }

func (s *SetValue) Add(v Value) error {
	if ok, err := s.Contains(v); err != nil || ok {
		return err
	}
	return s.m.Set(v, None)
}

func (s *SetValue) Remove(v Value) (bool, error) {
	return s.m.Delete(v)
}

func (s *SetValue) Contains(v Value) (bool, error) {
	_, ok, err := s.m.Get(v)
	return ok, err
}

func (s *SetValue) Items() []Value {
	return s.m.Keys()
}
