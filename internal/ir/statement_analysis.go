package ir

import "github.com/skye-lang/skyec/internal/types"

// ContainsUnknown is the statement-level counterpart of Value.ContainsUnknown.
func (s Statement) ContainsUnknown() bool {
	switch d := s.Data.(type) {
	case *Define:
		return d.Value.ContainsUnknown()
	case *Expression:
		return d.Value.ContainsUnknown()
	case *StructDef:
		return types.ContainsUnknown(d.Type)
	case *UnionDef:
		return types.ContainsUnknown(d.Type)
	case *Loop:
		return d.Body.ContainsUnknown()
	case *VarDecl:
		if types.ContainsUnknown(d.Type) {
			return true
		}
		return d.Initializer != nil && d.Initializer.ContainsUnknown()
	case *Return:
		return d.Value != nil && d.Value.ContainsUnknown()
	case *If:
		if d.Condition.ContainsUnknown() || d.ThenBranch.ContainsUnknown() {
			return true
		}
		return d.ElseBranch != nil && d.ElseBranch.ContainsUnknown()
	case *Scope:
		for _, stmt := range *d.Statements {
			if stmt.ContainsUnknown() {
				return true
			}
		}
		return false
	case *TaggedUnion:
		for _, field := range d.Fields {
			if types.ContainsUnknown(field) {
				return true
			}
		}
		return false
	case *FunctionDef:
		if types.ContainsUnknown(d.Signature) {
			return true
		}
		for _, p := range d.Params {
			if types.ContainsUnknown(p.Type) {
				return true
			}
		}
		if d.Body != nil {
			for _, stmt := range d.Body {
				if stmt.ContainsUnknown() {
					return true
				}
			}
		}
		return false
	case *Switch:
		if d.Value.ContainsUnknown() {
			return true
		}
		for _, branch := range d.Branches {
			if branch.Code.ContainsUnknown() {
				return true
			}
			for _, c := range branch.Cases {
				if c.ContainsUnknown() {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}
