package lib

// Renderer is implemented by values that write themselves to the output
// buffer. It is what `<%= value %>` requires when no filter is applied.
type Renderer interface {
	Render(b *Buffer) error
}

// EscapedRenderer lets a Renderer provide its own escaped output instead of
// having its rendered output escaped afterwards.
type EscapedRenderer interface {
	Renderer
	RenderEscaped(b *Buffer) error
}

// Render writes the value without escaping.
func (v *Value) Render(b *Buffer) error {
	if r, ok := v.Val.(Renderer); ok {
		return r.Render(b)
	}
	if !v.Capabilities().Has(Renderable) {
		return mismatch("", v, Renderable)
	}
	s, err := v.Display()
	if err != nil {
		return err
	}
	b.WriteString(s)
	return nil
}

// RenderEscaped writes the value with HTML escaping. Booleans and numbers
// cannot contain reserved characters and are written as is.
func (v *Value) RenderEscaped(b *Buffer) error {
	switch r := v.Val.(type) {
	case EscapedRenderer:
		return r.RenderEscaped(b)
	case Renderer:
		scratch := NewBuffer()
		if err := r.Render(scratch); err != nil {
			return err
		}
		EscapeTo(b, scratch.String())
		return nil
	}
	if !v.Capabilities().Has(Renderable) {
		return mismatch("", v, Renderable)
	}
	s, err := v.Display()
	if err != nil {
		return err
	}
	if v.isPlainNumberOrBool() {
		b.WriteString(s)
		return nil
	}
	EscapeTo(b, s)
	return nil
}
