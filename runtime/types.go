package runtime

type TypeTag int

const (
	TypeTagNone TypeTag = iota
	TypeTagBool
	TypeTagInt
	TypeTagNumber
	TypeTagString
	TypeTagTuple
	TypeTagList
	TypeTagSet
	TypeTagMap
	TypeTagFunction
	TypeTagSlice
	TypeTagOverloads
)

// Type is the runtime tag of a Value.  Every tag has exactly one *Type so
// values can be compared by pointer.
type Type struct {
	Tag  TypeTag
	Name string
}

func (t *Type) String() string { return t.Name }

var (
	// Use singletons for basic types for efficiency
	NoneType      = &Type{TypeTagNone, "none"}
	BoolType      = &Type{TypeTagBool, "bool"}
	IntType       = &Type{TypeTagInt, "int"}
	NumberType    = &Type{TypeTagNumber, "number"}
	StrType       = &Type{TypeTagString, "str"}
	TupleType     = &Type{TypeTagTuple, "tuple"}
	ListType      = &Type{TypeTagList, "list"}
	SetType       = &Type{TypeTagSet, "set"}
	MapType       = &Type{TypeTagMap, "dict"}
	FuncType      = &Type{TypeTagFunction, "function"}
	SliceType     = &Type{TypeTagSlice, "slice"}
	OverloadsType = &Type{TypeTagOverloads, "overloads"}
)

var typesByName = map[string]*Type{
	"none":     NoneType,
	"bool":     BoolType,
	"int":      IntType,
	"number":   NumberType,
	"decimal":  NumberType,
	"float":    NumberType,
	"str":      StrType,
	"tuple":    TupleType,
	"list":     ListType,
	"set":      SetType,
	"dict":     MapType,
	"map":      MapType,
	"function": FuncType,
	"slice":    SliceType,
}

// TypeByName resolves a type name used in assignment assertions.
func TypeByName(name string) (*Type, bool) {
	t, ok := typesByName[name]
	return t, ok
}

// Accepts reports whether v is an instance of t.  Every integer is also a
// number and overload tables count as functions.
func (t *Type) Accepts(v Value) bool {
	if v.Type == t {
		return true
	}
	switch t {
	case NumberType:
		return v.Type == IntType
	case FuncType:
		return v.Type == OverloadsType
	}
	return false
}
