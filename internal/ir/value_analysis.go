package ir

import "github.com/skye-lang/skyec/internal/types"

// ContainsUnknown reports whether v's type or any nested value's type still
// carries an Unknown placeholder. The IR generator checks this before
// emitting a diagnostic about a computed value, so a failure deep inside a
// template-inference sub-expression reports once at its source instead of
// cascading into every expression that used it (spec.md §7 propagation
// rule).
func (v Value) ContainsUnknown() bool {
	if types.ContainsUnknown(v.Type) {
		return true
	}
	switch d := v.Data.(type) {
	case Increment:
		return d.Value.ContainsUnknown()
	case Decrement:
		return d.Value.ContainsUnknown()
	case Negative:
		return d.Value.ContainsUnknown()
	case Invert:
		return d.Value.ContainsUnknown()
	case Negate:
		return d.Value.ContainsUnknown()
	case Reference:
		return d.Value.ContainsUnknown()
	case Dereference:
		return d.Value.ContainsUnknown()
	case Get:
		return d.From.ContainsUnknown()
	case DereferenceGet:
		return d.From.ContainsUnknown()
	case Grouping:
		return d.Value.ContainsUnknown()
	case Cast:
		return types.ContainsUnknown(d.To) || d.From.ContainsUnknown()
	case Subscript:
		return d.Subscripted.ContainsUnknown() || d.Index.ContainsUnknown()
	case Binary:
		return d.Left.ContainsUnknown() || d.Right.ContainsUnknown()
	case Assign:
		return d.Target.ContainsUnknown() || d.Value.ContainsUnknown()
	case Ternary:
		return d.Condition.ContainsUnknown() || d.ThenBranch.ContainsUnknown() || d.ElseBranch.ContainsUnknown()
	case Call:
		if d.Callee.ContainsUnknown() {
			return true
		}
		for _, arg := range d.Args {
			if arg.ContainsUnknown() {
				return true
			}
		}
		return false
	case Slice:
		for _, item := range d.Items {
			if item.ContainsUnknown() {
				return true
			}
		}
		return false
	case Array:
		for _, item := range d.Items {
			if item.ContainsUnknown() {
				return true
			}
		}
		return false
	case CompoundLiteral:
		for _, item := range d.Items {
			if item.ContainsUnknown() {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// KeepSideEffects reduces v to the smallest sub-value that still needs to
// run for its side effects, discarding the rest. Used when a value is
// computed but never consumed (e.g. the untaken branch of a folded
// ternary, or an expression statement whose result nobody reads) so the
// generator doesn't emit dead loads while still running anything that
// mutates state.
func (v Value) KeepSideEffects() Value {
	switch d := v.Data.(type) {
	case Empty:
		return v
	case Call, Increment, Assign, Decrement:
		return v
	case Grouping:
		return d.Value.KeepSideEffects()
	case Cast:
		return d.From.KeepSideEffects()
	case Negative:
		return d.Value.KeepSideEffects()
	case Invert:
		return d.Value.KeepSideEffects()
	case Reference:
		return d.Value.KeepSideEffects()
	case Dereference:
		return d.Value.KeepSideEffects()
	case Get:
		return d.From.KeepSideEffects()
	case DereferenceGet:
		return d.From.KeepSideEffects()
	case Negate:
		return d.Value.KeepSideEffects()
	case Ternary:
		condition := d.Condition.KeepSideEffects()
		then := d.ThenBranch.KeepSideEffects()
		els := d.ElseBranch.KeepSideEffects()
		if !then.IsEmpty() || !els.IsEmpty() {
			return v
		}
		return condition
	case CompoundLiteral:
		var kept []Value
		for _, item := range d.Items {
			k := item.KeepSideEffects()
			if !k.IsEmpty() {
				kept = append(kept, k)
			}
		}
		switch len(kept) {
		case 0:
			return EmptyWithType(v.Type)
		case 1:
			return kept[0]
		default:
			return v
		}
	case Binary:
		left := d.Left.KeepSideEffects()
		right := d.Right.KeepSideEffects()
		return pickSideEffectPair(v, left, right)
	case Subscript:
		left := d.Subscripted.KeepSideEffects()
		right := d.Index.KeepSideEffects()
		return pickSideEffectPair(v, left, right)
	default:
		return EmptyWithType(v.Type)
	}
}

func pickSideEffectPair(original, left, right Value) Value {
	switch {
	case left.IsEmpty() && right.IsEmpty():
		return EmptyWithType(original.Type)
	case left.IsEmpty():
		return right
	case right.IsEmpty():
		return left
	default:
		return original
	}
}
