package parser

// Registry holds the domain parsers in registration order.
type Registry struct {
	parsers map[Domain]Parser
	order   []Domain
}

// NewRegistry creates a new parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[Domain]Parser),
		order:   make([]Domain, 0),
	}
}

// Register adds a parser, replacing any earlier parser for the same domain
// without changing its position.
func (r *Registry) Register(p Parser) {
	d := p.Domain()
	if _, exists := r.parsers[d]; !exists {
		r.order = append(r.order, d)
	}
	r.parsers[d] = p
}

// Get retrieves a parser by domain.
func (r *Registry) Get(d Domain) (Parser, bool) {
	p, ok := r.parsers[d]
	return p, ok
}

// All returns all registered parsers in registration order.
func (r *Registry) All() []Parser {
	result := make([]Parser, len(r.order))
	for i, d := range r.order {
		result[i] = r.parsers[d]
	}
	return result
}

// Domains returns the registered domains in registration order.
func (r *Registry) Domains() []Domain {
	out := make([]Domain, len(r.order))
	copy(out, r.order)
	return out
}
