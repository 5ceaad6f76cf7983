package gen

// The following types make up the schema model consumed by the schema
// generator. They hold names, never pointers to each other, so that a
// model can be serialized as is; lookups go through the Graph indexes.
type (
	// Type represents one node entity in the graph, its relationships and
	// the attributes it holds.
	Type struct {
		// Name holds the GraphQL type name.
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		// Plural is the plural used in root field names, e.g. "movies".
		Plural string `json:"plural"`
		// Labels are the node labels stored in the graph.
		Labels []string `json:"labels"`
		// Fields holds all the attributes in declaration order.
		Fields []*Field `json:"fields"`
		// Edges holds all the relationships in declaration order.
		Edges []*Edge `json:"edges,omitempty"`
		// Interfaces are the implemented interfaces.
		Interfaces []string `json:"interfaces,omitempty"`
		Policy     *Policy  `json:"policy,omitempty"`
		// Operation toggles.
		Query        QueryOps        `json:"query"`
		Mutation     MutationOps     `json:"mutation"`
		Subscription SubscriptionOps `json:"subscription"`
		Limit        *Limit          `json:"limit,omitempty"`
		// Keys are the federation entity key field sets.
		Keys []string `json:"keys,omitempty"`
		// Directives are applications passed through to the output type.
		Directives []Directive `json:"directives,omitempty"`

		fields map[string]*Field
		edges  map[string]*Edge
	}

	// Interface is an interface group of entities.
	Interface struct {
		Name        string   `json:"name"`
		Description string   `json:"description,omitempty"`
		Plural      string   `json:"plural"`
		Fields      []*Field `json:"fields"`
		Edges       []*Edge  `json:"edges,omitempty"`
		// Implementers are the concrete entities in declaration order.
		Implementers []string    `json:"implementers,omitempty"`
		Interfaces   []string    `json:"interfaces,omitempty"`
		Directives   []Directive `json:"directives,omitempty"`
		Query        QueryOps    `json:"query"`
		Limit        *Limit      `json:"limit,omitempty"`

		fields map[string]*Field
		edges  map[string]*Edge
	}

	// Union is a union group of entities.
	Union struct {
		Name        string   `json:"name"`
		Description string   `json:"description,omitempty"`
		Plural      string   `json:"plural"`
		Members     []string `json:"members"`
		Query       QueryOps `json:"query"`
	}

	// Enum is a user enum.
	Enum struct {
		Name        string      `json:"name"`
		Description string      `json:"description,omitempty"`
		Values      []EnumValue `json:"values"`
	}

	// EnumValue is a member of an enum.
	EnumValue struct {
		Name        string  `json:"name"`
		Description string  `json:"description,omitempty"`
		Deprecated  *string `json:"deprecated,omitempty"`
	}

	// Scalar is a user scalar.
	Scalar struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}

	// Object is an output object that is not an entity. Relationship
	// properties types are objects with Properties set.
	Object struct {
		Name        string      `json:"name"`
		Description string      `json:"description,omitempty"`
		Fields      []*Field    `json:"fields"`
		Interfaces  []string    `json:"interfaces,omitempty"`
		Properties  bool        `json:"properties,omitempty"`
		Directives  []Directive `json:"directives,omitempty"`

		fields map[string]*Field
	}

	// Input is a user input object.
	Input struct {
		Name        string     `json:"name"`
		Description string     `json:"description,omitempty"`
		Fields      []Argument `json:"fields"`
	}

	// QueryOps toggles the generated root query fields of an entity.
	QueryOps struct {
		Read      bool `json:"read"`
		Aggregate bool `json:"aggregate"`
	}

	// MutationOps toggles the generated root mutation fields of an entity.
	MutationOps struct {
		Create bool `json:"create"`
		Update bool `json:"update"`
		Delete bool `json:"delete"`
	}

	// SubscriptionOps toggles the generated subscription fields of an entity.
	SubscriptionOps struct {
		Created bool `json:"created"`
		Updated bool `json:"updated"`
		Deleted bool `json:"deleted"`
	}

	// Limit holds the page size bounds of list accessors.
	Limit struct {
		Default int `json:"default,omitempty"`
		Max     int `json:"max,omitempty"`
	}
)

// FieldByName returns the attribute with the given name.
func (t *Type) FieldByName(name string) (*Field, bool) {
	f, ok := t.fields[name]
	return f, ok
}

// EdgeByName returns the relationship with the given name.
func (t *Type) EdgeByName(name string) (*Edge, bool) {
	e, ok := t.edges[name]
	return e, ok
}

// KeyFields returns the attributes marked @id or @unique.
func (t *Type) KeyFields() []*Field {
	return keyFields(t.Fields)
}

// HasKey reports whether the entity has a unique key.
func (t *Type) HasKey() bool { return len(t.KeyFields()) > 0 }

// FieldByName returns the attribute with the given name.
func (i *Interface) FieldByName(name string) (*Field, bool) {
	f, ok := i.fields[name]
	return f, ok
}

// EdgeByName returns the relationship with the given name.
func (i *Interface) EdgeByName(name string) (*Edge, bool) {
	e, ok := i.edges[name]
	return e, ok
}

// FieldByName returns the attribute with the given name.
func (o *Object) FieldByName(name string) (*Field, bool) {
	f, ok := o.fields[name]
	return f, ok
}

func keyFields(fields []*Field) []*Field {
	var keys []*Field
	for _, f := range fields {
		if f.Key() && !f.Type.List {
			keys = append(keys, f)
		}
	}
	return keys
}

func indexFields(fields []*Field) map[string]*Field {
	m := make(map[string]*Field, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return m
}

func indexEdges(edges []*Edge) map[string]*Edge {
	m := make(map[string]*Edge, len(edges))
	for _, e := range edges {
		m[e.Name] = e
	}
	return m
}
