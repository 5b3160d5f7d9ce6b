package value

// Context is a persistent, shareable lexical scope (spec §3.6): a mapping
// from identifier to Thunk plus the three slots (`this`, `super`, `$`)
// consulted by the `self`/`super`/`$` literals. Extending a Context
// layers new bindings over it; the original remains valid and shareable
// (e.g. two sibling `local` bodies can extend the same parent Context
// independently).
type Context struct {
	parent   *Context
	bindings map[string]*Thunk

	this   *Object
	super  *Object
	dollar *Object
}

// NewRootContext returns an empty top-level context: no bindings, no
// this/super/dollar.
func NewRootContext() *Context {
	return &Context{}
}

// Lookup searches this context's bindings, then its parent chain.
func (c *Context) Lookup(name string) (*Thunk, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if ctx.bindings != nil {
			if t, ok := ctx.bindings[name]; ok {
				return t, true
			}
		}
	}
	return nil, false
}

// This returns the context's `self` object, or nil if none (the evaluator
// turns a nil result into *CantUseSelfOutsideOfObject*).
func (c *Context) This() *Object { return c.this }

// Super returns the context's `super` object, or nil if none (the
// evaluator turns a nil result into *NoSuperFound*).
func (c *Context) Super() *Object { return c.super }

// Dollar returns the context's `$` object, or nil if none (the evaluator
// turns a nil result into *NoTopLevelObjectFound*).
func (c *Context) Dollar() *Object { return c.dollar }

// ExtendOpts controls which of the this/super/dollar slots Extend
// overrides; a zero-value field with its Set* companion false inherits the
// parent context's slot unchanged.
type ExtendOpts struct {
	This    *Object
	SetThis bool

	Super    *Object
	SetSuper bool

	Dollar    *Object
	SetDollar bool
}

// Extend returns a new Context layering bindings over c. Per spec §4.3,
// when SetThis is set and Dollar is not explicitly overridden, an unset
// dollar slot defaults to the new `this` — the innermost `this` becomes
// `$` the first time a context enters object scope.
func (c *Context) Extend(bindings map[string]*Thunk, opts ExtendOpts) *Context {
	this := c.this
	if opts.SetThis {
		this = opts.This
	}
	super := c.super
	if opts.SetSuper {
		super = opts.Super
	}
	dollar := c.dollar
	if opts.SetDollar {
		dollar = opts.Dollar
	} else if dollar == nil && opts.SetThis {
		dollar = this
	}
	return &Context{parent: c, bindings: bindings, this: this, super: super, dollar: dollar}
}

// Pending is the single-fill placeholder described in spec §3.7/§4.3: a
// Context that will exist once the surrounding scope finishes
// constructing itself. Thunks that need to see sibling bindings in the
// same scope (a `local`'s bindings referencing each other, or a
// function's defaults referencing other parameters) close over a *Pending
// instead of a *Context, and the scope fills it exactly once as its last
// construction step.
//
// Reading an unfilled Pending is a construction bug, not a language-level
// error: the evaluator guarantees fill-before-force by construction order
// (no thunk capturing a Pending is ever forced before that Pending is
// filled), so Get panics rather than returning an error.
type Pending struct {
	ctx    *Context
	filled bool
}

// NewPending creates an empty placeholder.
func NewPending() *Pending {
	return &Pending{}
}

// Fill installs ctx as the Pending's resolved Context. Filling an
// already-filled Pending panics; every construction path fills each
// Pending exactly once.
func (p *Pending) Fill(ctx *Context) {
	if p.filled {
		panic("value: Pending filled twice")
	}
	p.ctx = ctx
	p.filled = true
}

// Get returns the resolved Context. Panics if called before Fill.
func (p *Pending) Get() *Context {
	if !p.filled {
		panic("value: Pending read before fill")
	}
	return p.ctx
}
