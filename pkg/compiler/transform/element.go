package transform

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/recera/vtc/pkg/compiler/ast"
	"github.com/recera/vtc/pkg/compiler/runtime"
)

var (
	// memberExpRE matches a bare handler reference such as save or user.save
	memberExpRE = regexp.MustCompile(`^[A-Za-z_$][\w$]*(?:\s*\.\s*[A-Za-z_$][\w$]*|\[[^\]]+\])*$`)
	// fnExpRE matches an inline arrow function or function expression
	fnExpRE = regexp.MustCompile(`^\s*(?:[\w$]+|(?:async\s*)?\([^)]*?\))\s*(?::[^=]+)?=>|^\s*(?:async\s+)?function(?:\s+[\w$]+)?\s*\(`)
)

// runtimeModifiers are v-on modifiers the runtime applies through withModifiers
var runtimeModifiers = map[string]bool{
	"stop": true, "prevent": true, "self": true, "exact": true,
	"ctrl": true, "shift": true, "alt": true, "meta": true,
	"left": true, "middle": true, "right": true,
}

// keyboardEvents take key modifiers such as .enter, guarded through withKeys.
// On these events .left and .right name arrow keys, not mouse buttons.
var keyboardEvents = map[string]bool{
	"keyup": true, "keydown": true, "keypress": true,
}

// optionModifiers are v-on modifiers folded into the handler key
var optionModifiers = map[string]string{
	"capture": "Capture",
	"once":    "Once",
	"passive": "Passive",
}

// compileTimeDirectives are consumed before code generation and emit nothing
var compileTimeDirectives = map[string]bool{
	"slot":  true,
	"cloak": true,
	"once":  true,
	"pre":   true,
	"memo":  true,
	"is":    true,
}

// TransformElement sets each element's codegen node to a vnode creation
// call. It runs on exit so children are transformed first.
func TransformElement(n ast.Node, ctx *Context) func() {
	el, ok := n.(*ast.Element)
	if !ok {
		return nil
	}
	return func() {
		var call *ast.CallExpression
		if el.TagType == ast.ElementSlot {
			call = buildSlotCall(el, ctx)
		} else {
			call = buildVNodeCall(el, ctx)
		}
		if err := ctx.SetCodegenNode(el, call); err != nil {
			ctx.ReportError(err)
		}
	}
}

// buildVNodeCall builds createVNode(tag, props, children), wrapped in
// withDirectives when the element carries runtime directives
func buildVNodeCall(el *ast.Element, ctx *Context) *ast.CallExpression {
	var tag ast.CallArgument
	list := el.Props
	switch {
	case el.TagType == ast.ElementComponent && el.Tag == "component":
		var is ast.CallArgument
		is, list = dynamicComponent(el, ctx)
		tag = ast.NewCallExpression(ctx.Helper(runtime.ResolveDynamic), []ast.CallArgument{is}, ast.LocStub)
	case el.TagType == ast.ElementComponent:
		tag = ast.NewCallExpression(
			ctx.Helper(runtime.ResolveComponent),
			[]ast.CallArgument{ast.RawString(strconv.Quote(el.Tag))},
			ast.LocStub,
		)
	case el.TagType == ast.ElementTemplate:
		tag = ast.RawString(runtime.Alias(ctx.Helper(runtime.Fragment)))
	default:
		tag = ast.RawString(strconv.Quote(el.Tag))
	}

	props, directives := buildPropList(list, el, ctx)

	args := []ast.CallArgument{tag}
	switch {
	case len(el.Children) > 0:
		if props != nil {
			args = append(args, props)
		} else {
			args = append(args, ast.RawString("null"))
		}
		args = append(args, ast.ChildList(el.Children))
	case props != nil:
		args = append(args, props)
	}

	call := ast.NewCallExpression(ctx.Helper(runtime.CreateVNode), args, el.Loc)
	if len(directives) == 0 {
		return call
	}
	return ast.NewCallExpression(
		ctx.Helper(runtime.WithDirectives),
		[]ast.CallArgument{call, ast.NewArrayExpression(directives, ast.LocStub)},
		el.Loc,
	)
}

// dynamicComponent takes the is prop off a <component> element and returns
// it as the argument to resolveDynamicComponent along with the other props
func dynamicComponent(el *ast.Element, ctx *Context) (ast.CallArgument, []ast.PropNode) {
	var is ast.CallArgument
	var rest []ast.PropNode
	for _, p := range el.Props {
		if is == nil {
			switch p := p.(type) {
			case *ast.Attribute:
				if p.Name == "is" && p.Value != nil {
					is = ast.RawString(strconv.Quote(p.Value.Content))
					continue
				}
			case *ast.Directive:
				if p.Name == "bind" && p.Arg != nil && p.Arg.IsStatic && p.Arg.Content == "is" &&
					p.Exp != nil && strings.TrimSpace(p.Exp.Content) != "" {
					is = cloneExpression(p.Exp)
					continue
				}
			}
		}
		rest = append(rest, p)
	}
	if is == nil {
		ctx.errorf(el.Loc, ErrUnsupportedDirective, "<component> is missing the is prop")
		is = ast.RawString(`"component"`)
	}
	return is, rest
}

// buildSlotCall builds renderSlot($slots, name, props, fallback)
func buildSlotCall(el *ast.Element, ctx *Context) *ast.CallExpression {
	var name ast.CallArgument = ast.RawString(`"default"`)
	var rest []ast.PropNode
	for _, p := range el.Props {
		switch p := p.(type) {
		case *ast.Attribute:
			if p.Name == "name" && p.Value != nil {
				name = ast.RawString(strconv.Quote(p.Value.Content))
				continue
			}
		case *ast.Directive:
			if p.Name == "bind" && p.Arg != nil && p.Arg.IsStatic && p.Arg.Content == "name" && p.Exp != nil {
				name = cloneExpression(p.Exp)
				continue
			}
		}
		rest = append(rest, p)
	}

	args := []ast.CallArgument{ast.RawString("$slots"), name}
	slotProps, _ := buildPropList(rest, el, ctx)
	switch {
	case len(el.Children) > 0:
		if slotProps != nil {
			args = append(args, slotProps)
		} else {
			args = append(args, ast.RawString("{}"))
		}
		args = append(args, ast.ChildList(el.Children))
	case slotProps != nil:
		args = append(args, slotProps)
	}
	return ast.NewCallExpression(ctx.Helper(runtime.RenderSlot), args, el.Loc)
}

// buildPropList lowers an element's attributes and directives. Runtime
// directives come back separately as withDirectives tuples.
func buildPropList(list []ast.PropNode, el *ast.Element, ctx *Context) (*ast.ObjectExpression, []ast.CodegenNode) {
	var props []*ast.Property
	var directives []ast.CodegenNode

	for _, p := range list {
		switch p := p.(type) {
		case *ast.Attribute:
			props = append(props, attributeProp(p))
		case *ast.Directive:
			switch {
			case p.Name == "bind":
				if prop := bindProp(p, ctx); prop != nil {
					props = append(props, prop)
				}
			case p.Name == "on":
				if prop := onProp(p, ctx); prop != nil {
					props = append(props, prop)
				}
			case p.Name == "model":
				props = append(props, modelProps(p, el, ctx)...)
				if p.Exp != nil && el.TagType == ast.ElementPlain {
					directives = append(directives, directiveTuple(
						ast.RawString(runtime.Alias(ctx.Helper(runtime.VModelText))), p))
				}
			case p.Name == "text" || p.Name == "html":
				if prop := contentProp(p, ctx); prop != nil {
					props = append(props, prop)
				}
			case p.Name == "show":
				directives = append(directives, directiveTuple(
					ast.RawString(runtime.Alias(ctx.Helper(runtime.VShow))), p))
			case compileTimeDirectives[p.Name]:
			default:
				ref := ast.NewCallExpression(
					ctx.Helper(runtime.ResolveDirective),
					[]ast.CallArgument{ast.RawString(strconv.Quote(p.Name))},
					ast.LocStub,
				)
				directives = append(directives, directiveTuple(ref, p))
			}
		}
	}

	if len(props) == 0 {
		return nil, directives
	}
	return ast.NewObjectExpression(props, ast.LocStub), directives
}

func attributeProp(a *ast.Attribute) *ast.Property {
	key := ast.NewExpression(a.Name, true, a.Loc)
	var value *ast.Expression
	if a.Value != nil {
		value = ast.NewExpression(a.Value.Content, true, a.Value.Loc)
	} else {
		value = ast.NewExpression("", true, ast.LocStub)
	}
	return ast.NewObjectProperty(key, value, a.Loc)
}

func bindProp(d *ast.Directive, ctx *Context) *ast.Property {
	if d.Arg == nil {
		ctx.errorf(d.Loc, ErrUnsupportedDirective, "v-bind without an argument")
		return nil
	}
	if d.Exp == nil || strings.TrimSpace(d.Exp.Content) == "" {
		ctx.errorf(d.Loc, ErrUnsupportedDirective, "v-bind:%s is missing expression", d.Arg.Content)
		return nil
	}

	key := cloneExpression(d.Arg)
	if key.IsStatic && slices.Contains(d.Modifiers, "camel") {
		key.Content = camelize(key.Content)
	}
	return ast.NewObjectProperty(key, cloneExpression(d.Exp), d.Loc)
}

func onProp(d *ast.Directive, ctx *Context) *ast.Property {
	if d.Arg == nil {
		ctx.errorf(d.Loc, ErrUnsupportedDirective, "v-on without an argument")
		return nil
	}

	var key *ast.Expression
	if d.Arg.IsStatic {
		name := "on" + capitalize(camelize(d.Arg.Content))
		for _, m := range d.Modifiers {
			name += optionModifiers[m]
		}
		key = ast.NewExpression(name, true, d.Arg.Loc)
	} else {
		key = ast.NewExpression(
			runtime.Alias(ctx.Helper(runtime.ToHandlerKey))+"("+d.Arg.Content+")", false, d.Arg.Loc)
	}

	handler := "() => {}"
	loc := ast.LocStub
	if d.Exp != nil && strings.TrimSpace(d.Exp.Content) != "" {
		handler = d.Exp.Content
		loc = d.Exp.Loc
		trimmed := strings.TrimSpace(handler)
		if !memberExpRE.MatchString(trimmed) && !fnExpRE.MatchString(trimmed) {
			handler = "$event => (" + handler + ")"
		}
	}

	keyboard := !d.Arg.IsStatic || keyboardEvents[strings.ToLower(d.Arg.Content)]
	var mods, keys []string
	for _, m := range d.Modifiers {
		switch {
		case keyboard && (m == "left" || m == "right"):
			keys = append(keys, strconv.Quote(m))
		case runtimeModifiers[m]:
			mods = append(mods, strconv.Quote(m))
		case optionModifiers[m] != "":
		case !keyboard:
			ctx.errorf(d.Loc, ErrUnsupportedDirective, "key modifier .%s on non-keyboard event %s", m, d.Arg.Content)
			return nil
		default:
			keys = append(keys, strconv.Quote(m))
		}
	}
	if len(mods) > 0 {
		handler = runtime.Alias(ctx.Helper(runtime.WithModifiers)) +
			"(" + handler + ", [" + strings.Join(mods, ",") + "])"
	}
	if len(keys) > 0 {
		handler = runtime.Alias(ctx.Helper(runtime.WithKeys)) +
			"(" + handler + ", [" + strings.Join(keys, ",") + "])"
	}

	return ast.NewObjectProperty(key, ast.NewExpression(handler, false, loc), d.Loc)
}

// modelProps expands v-model into a value prop and its update handler
func modelProps(d *ast.Directive, el *ast.Element, ctx *Context) []*ast.Property {
	if d.Exp == nil || strings.TrimSpace(d.Exp.Content) == "" {
		ctx.errorf(d.Loc, ErrUnsupportedDirective, "v-model is missing expression")
		return nil
	}

	name := "modelValue"
	if d.Arg != nil {
		if !d.Arg.IsStatic {
			ctx.errorf(d.Loc, ErrUnsupportedDirective, "v-model with a dynamic argument")
			return nil
		}
		name = d.Arg.Content
	}

	props := []*ast.Property{
		ast.NewObjectProperty(
			ast.NewExpression("onUpdate:"+name, true, ast.LocStub),
			ast.NewExpression("$event => (("+d.Exp.Content+") = $event)", false, d.Exp.Loc),
			d.Loc,
		),
	}
	// native inputs are driven by the vModelText directive instead
	if el.TagType != ast.ElementPlain {
		value := ast.NewObjectProperty(ast.NewExpression(name, true, ast.LocStub), cloneExpression(d.Exp), d.Loc)
		props = append([]*ast.Property{value}, props...)
	}
	return props
}

// contentProp lowers v-text and v-html to DOM properties
func contentProp(d *ast.Directive, ctx *Context) *ast.Property {
	if d.Exp == nil {
		ctx.errorf(d.Loc, ErrUnsupportedDirective, "v-%s is missing expression", d.Name)
		return nil
	}
	key := "textContent"
	value := cloneExpression(d.Exp)
	if d.Name == "html" {
		key = "innerHTML"
	} else {
		value.Content = runtime.Alias(ctx.Helper(runtime.ToDisplayString)) + "(" + value.Content + ")"
	}
	return ast.NewObjectProperty(ast.NewExpression(key, true, ast.LocStub), value, d.Loc)
}

// directiveTuple builds [dir, exp, arg, modifiers], trimming trailing
// absent entries and filling inner gaps with void 0
func directiveTuple(ref ast.CodegenNode, d *ast.Directive) ast.CodegenNode {
	elements := []ast.CodegenNode{ref}

	if d.Exp != nil {
		elements = append(elements, cloneExpression(d.Exp))
	} else if d.Arg != nil || len(d.Modifiers) > 0 {
		elements = append(elements, ast.RawString("void 0"))
	}

	if d.Arg != nil {
		if d.Arg.IsStatic {
			elements = append(elements, ast.RawString(strconv.Quote(d.Arg.Content)))
		} else {
			elements = append(elements, cloneExpression(d.Arg))
		}
	} else if len(d.Modifiers) > 0 {
		elements = append(elements, ast.RawString("void 0"))
	}

	if len(d.Modifiers) > 0 {
		mods := make([]*ast.Property, 0, len(d.Modifiers))
		for _, m := range d.Modifiers {
			mods = append(mods, ast.NewObjectProperty(
				ast.NewExpression(m, true, ast.LocStub),
				ast.NewExpression("true", false, ast.LocStub),
				ast.LocStub,
			))
		}
		elements = append(elements, ast.NewObjectExpression(mods, ast.LocStub))
	}

	return ast.NewArrayExpression(elements, d.Loc)
}

// cloneExpression copies e so the codegen tree never shares a node with
// the syntax tree
func cloneExpression(e *ast.Expression) *ast.Expression {
	return ast.NewExpression(e.Content, e.IsStatic, e.Loc)
}

// camelize turns kebab-case into camelCase
func camelize(s string) string {
	parts := strings.Split(s, "-")
	for i := 1; i < len(parts); i++ {
		parts[i] = capitalize(parts[i])
	}
	return strings.Join(parts, "")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
