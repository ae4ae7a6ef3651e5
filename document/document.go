package document

// Operation names accepted in a template's operation field.
const (
	OpForEachItem  = "for_each_item"
	OpForEachClass = "for_each_class"
	OpRange        = "range"
	OpCombination  = "iter.combination"
)

// Document is the parsed input in declaration order.
type Document struct {
	Config    string
	Keys      []Key
	Subsets   []Subset
	Classes   []Class
	Templates []Template
}

// Key names a reusable value. Values may reference earlier keys with
// ${name} segments; resolution happens later, in declaration order.
type Key struct {
	Name  string
	Value string
}

// Subset declares a tag that entities may carry.
type Subset struct {
	Name        string
	Description string
}

// Property is one name/value pair in declaration order. The value keeps
// its scalar type until rendering.
type Property struct {
	Name  string
	Value any
}

// Class is a basic entity declared directly in the document.
type Class struct {
	Name       string
	Type       string
	Parents    []string
	Root       bool
	Properties []Property
	Subsets    []string
}

// Template declares one expansion rule. Input stays loosely typed here;
// each operation validates its own shape before expanding.
type Template struct {
	Name      string
	Class     string
	Operation string
	Input     any
	HasInput  bool
	Pattern   Pattern
	Parent    any
	Prefix    string
	Subsets   []string
}

// Pattern is the entity shape a template stamps out per item.
type Pattern struct {
	Name       string
	HasName    bool
	Parent     any
	Properties []Property
}
