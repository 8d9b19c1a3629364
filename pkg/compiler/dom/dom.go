// Package dom supplies the browser platform knowledge the template parser
// needs: markup namespaces beyond plain HTML, native and void tag tables, and
// character reference decoding.
package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/recera/vtc/pkg/compiler/ast"
	"github.com/recera/vtc/pkg/compiler/parser"
)

const (
	// NamespaceSVG is vector graphics markup
	NamespaceSVG ast.Namespace = ast.NamespaceHTML + 1 + iota
	// NamespaceMathML is math markup
	NamespaceMathML
)

const htmlTagNames = "html body base head link meta style title address article aside footer " +
	"header h1 h2 h3 h4 h5 h6 hgroup nav section div dd dl dt figcaption " +
	"figure picture hr img li main ol p pre ul a b abbr bdi bdo br cite code " +
	"data dfn em i kbd mark q rp rt rtc ruby s samp small span strong sub sup " +
	"time u var wbr area audio map track video embed object param source " +
	"canvas script noscript del ins caption col colgroup table thead tbody td " +
	"th tr button datalist fieldset form input label legend meter optgroup " +
	"option output progress select textarea details dialog menu " +
	"summary template blockquote iframe tfoot"

// SVG tag names are case sensitive so they are kept as strings rather than
// atoms, which are lower case.
const svgTagNames = "svg animate animateMotion animateTransform circle clipPath color-profile " +
	"defs desc discard ellipse feBlend feColorMatrix feComponentTransfer " +
	"feComposite feConvolveMatrix feDiffuseLighting feDisplacementMap " +
	"feDistanceLight feDropShadow feFlood feFuncA feFuncB feFuncG feFuncR " +
	"feGaussianBlur feImage feMerge feMergeNode feMorphology feOffset " +
	"fePointLight feSpecularLighting feSpotLight feTile feTurbulence filter " +
	"foreignObject g hatch hatchpath image line linearGradient marker mask " +
	"mesh meshgradient meshpatch meshrow metadata mpath path pattern " +
	"polygon polyline radialGradient rect set solidcolor stop switch symbol " +
	"text textPath title tspan unknown use view"

var (
	htmlTags = make(map[atom.Atom]bool)
	svgTags  = make(map[string]bool)

	voidTags = map[atom.Atom]bool{
		atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
		atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
		atom.Link: true, atom.Meta: true, atom.Param: true, atom.Source: true,
		atom.Track: true, atom.Wbr: true,
	}
)

func init() {
	for _, name := range strings.Fields(htmlTagNames) {
		if a := atom.Lookup([]byte(name)); a != 0 {
			htmlTags[a] = true
		}
	}
	for _, name := range strings.Fields(svgTagNames) {
		svgTags[name] = true
	}
}

// IsHTMLTag reports whether tag is a standard HTML element
func IsHTMLTag(tag string) bool {
	return htmlTags[atom.Lookup([]byte(tag))]
}

// IsSVGTag reports whether tag is a standard SVG element
func IsSVGTag(tag string) bool {
	return svgTags[tag]
}

// IsNativeTag reports whether tag renders as a platform element rather than
// a component
func IsNativeTag(tag string) bool {
	return IsHTMLTag(tag) || IsSVGTag(tag)
}

// IsVoidTag reports whether tag never has content or an end tag
func IsVoidTag(tag string) bool {
	return voidTags[atom.Lookup([]byte(tag))]
}

// GetNamespace resolves the namespace of tag given its parent element
func GetNamespace(tag string, parentNS ast.Namespace, parentTag string) ast.Namespace {
	ns := parentNS
	switch parentNS {
	case NamespaceMathML:
		if parentTag == "annotation-xml" {
			if tag == "svg" {
				return NamespaceSVG
			}
		} else if isMathMLTextIntegrationPoint(parentTag) && tag != "mglyph" && tag != "malignmark" {
			ns = ast.NamespaceHTML
		}
	case NamespaceSVG:
		if parentTag == "foreignObject" || parentTag == "desc" || parentTag == "title" {
			ns = ast.NamespaceHTML
		}
	}

	if ns == ast.NamespaceHTML {
		switch atom.Lookup([]byte(tag)) {
		case atom.Svg:
			return NamespaceSVG
		case atom.Math:
			return NamespaceMathML
		}
	}
	return ns
}

func isMathMLTextIntegrationPoint(tag string) bool {
	switch tag {
	case "mi", "mo", "mn", "ms", "mtext":
		return true
	}
	return false
}

// DecodeEntities decodes character references such as &amp; in raw text
func DecodeEntities(raw string) string {
	if !strings.ContainsRune(raw, '&') {
		return raw
	}
	return html.UnescapeString(raw)
}

// ParserOptions returns parser options configured for browser markup
func ParserOptions() parser.Options {
	opts := parser.DefaultOptions()
	opts.IsNativeTag = IsNativeTag
	opts.IsVoidTag = IsVoidTag
	opts.GetNamespace = GetNamespace
	opts.DecodeEntities = DecodeEntities
	return opts
}
