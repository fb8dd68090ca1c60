package headers

// Field is a single response header line.
type Field struct {
	Name  string
	Value string
}

// List is an ordered sequence of header fields. Unlike Headers it keeps
// insertion order and never merges duplicate names, which is what response
// serialization needs.
type List []Field

func (l *List) Add(name, value string) {
	*l = append(*l, Field{Name: name, Value: value})
}

// Append adds every field of other after the existing ones.
func (l *List) Append(other List) {
	*l = append(*l, other...)
}

// Get returns the first value stored under name. Names compare exactly.
func (l List) Get(name string) (string, bool) {
	for _, f := range l {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Clone returns a copy that can be appended to without touching l.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}
