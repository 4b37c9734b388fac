package bindings

import (
	"log/slog"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/ardnew/molang/lang"
)

// sectionSchema admits one block per bindable scope.
var sectionSchema = func() *hcl.BodySchema {
	schema := &hcl.BodySchema{}
	for _, scope := range Scopes {
		schema.Blocks = append(schema.Blocks, hcl.BlockHeaderSchema{Type: scope.String()})
	}

	return schema
}()

func decodeHCL(data []byte, name string) (Set, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, name)
	if diags.HasErrors() {
		return Set{}, ErrDecode.Wrap(diags).With(slog.String("file", name))
	}

	content, diags := file.Body.Content(sectionSchema)
	if diags.HasErrors() {
		return Set{}, ErrDecode.Wrap(diags).With(slog.String("file", name))
	}

	var s Set

	for _, block := range content.Blocks {
		scope, _ := lang.ParseScope(block.Type)

		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return Set{}, ErrDecode.Wrap(diags).With(slog.String("file", name))
		}

		for key, attr := range attrs {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return Set{}, ErrDecode.Wrap(diags).With(
					slog.String("file", name),
					slog.String("scope", block.Type),
					slog.String("name", key),
				)
			}

			x, err := ctyToNative(val)
			if err != nil {
				return Set{}, ErrDecode.Wrap(err).With(
					slog.String("scope", block.Type),
					slog.String("name", key),
				)
			}

			v, err := lang.ValueOf(x)
			if err != nil {
				return Set{}, ErrDecode.Wrap(err).With(
					slog.String("scope", block.Type),
					slog.String("name", key),
				)
			}

			if err := s.Bind(scope, key, v); err != nil {
				return Set{}, err
			}
		}
	}

	return s, nil
}

// ctyToNative converts v into the native types accepted by [lang.ValueOf].
// Objects and maps have no Molang counterpart.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}

		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		elems := make([]any, 0, v.LengthInt())

		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()

			x, err := ctyToNative(ev)
			if err != nil {
				return nil, err
			}

			elems = append(elems, x)
		}

		return elems, nil

	default:
		return nil, lang.ErrTypeMismatch.With(
			slog.String("issue", "unsupported HCL type"),
			slog.String("type", ty.FriendlyName()),
		)
	}
}
