// Package uri encodes and decodes FASTEN Java method identifiers.
//
// A method URI has the canonical form
//
//	/{namespace}/{TypeName}.{methodName}({param,param})returnType
//
// where each parameter and the return type is itself a type fragment. A
// reference type fragment is `/namespace/Name`; when embedded in a method
// URI its slashes are percent-encoded exactly once (`%2Fnamespace%2FName`).
// Primitive types are bare literals (`VoidType`, `IntType`, ...). Array
// types append one `[]` per dimension to the fragment.
//
// Encoding is injective and decoding recovers every component exactly, so
// the canonical string is safe to use as a map key.
package uri

import (
	"fmt"
	"strings"
)

// Primitive type literals as spelled in method URIs.
const (
	Void    = "VoidType"
	Boolean = "BooleanType"
	Byte    = "ByteType"
	Char    = "CharType"
	Short   = "ShortType"
	Int     = "IntType"
	Long    = "LongType"
	Float   = "FloatType"
	Double  = "DoubleType"
)

var primitives = map[string]bool{
	Void:    true,
	Boolean: true,
	Byte:    true,
	Char:    true,
	Short:   true,
	Int:     true,
	Long:    true,
	Float:   true,
	Double:  true,
}

// FormatError reports a string that does not match the method URI grammar.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid URI %q: %s", e.Input, e.Reason)
}

// Type identifies a Java type: a primitive literal or a reference type with
// its package namespace, plus array dimensions. Primitives have an empty
// Namespace.
type Type struct {
	Namespace string
	Name      string
	Dims      int
}

// Primitive returns a Type for one of the fixed primitive literals.
func Primitive(name string) Type {
	return Type{Name: name}
}

// Ref returns a reference Type in the given namespace.
func Ref(namespace, name string) Type {
	return Type{Namespace: namespace, Name: name}
}

// Array returns a copy of t with n extra array dimensions.
func (t Type) Array(n int) Type {
	t.Dims += n
	return t
}

// IsPrimitive reports whether t is one of the fixed primitive literals.
func (t Type) IsPrimitive() bool {
	return t.Namespace == ""
}

// Fragment renders the unescaped type fragment, e.g. "/java.lang/String[]"
// or "IntType".
func (t Type) Fragment() string {
	var b strings.Builder
	if t.Namespace != "" {
		b.WriteByte('/')
		b.WriteString(t.Namespace)
		b.WriteByte('/')
	}
	b.WriteString(t.Name)
	for i := 0; i < t.Dims; i++ {
		b.WriteString("[]")
	}
	return b.String()
}

// escaped renders the fragment with slashes percent-encoded once, the form
// used inside a method URI.
func (t Type) escaped() string {
	return strings.ReplaceAll(t.Fragment(), "/", "%2F")
}

// wellFormed reports whether t has a canonical encoding: a primitive
// literal, or a reference type with both namespace and name present and
// free of grammar delimiters.
func (t Type) wellFormed() bool {
	if t.Namespace == "" {
		return primitives[t.Name]
	}
	return t.Name != "" &&
		!strings.ContainsAny(t.Namespace, "/(),") &&
		!strings.ContainsAny(t.Name, "/(),")
}

// ParseType parses an unescaped type fragment. Bare tokens must be one of
// the primitive literals.
func ParseType(s string) (Type, error) {
	var t Type
	rest := s
	for strings.HasSuffix(rest, "[]") {
		rest = rest[:len(rest)-2]
		t.Dims++
	}
	if strings.HasPrefix(rest, "/") {
		body := rest[1:]
		slash := strings.Index(body, "/")
		if slash <= 0 || slash == len(body)-1 {
			return Type{}, &FormatError{Input: s, Reason: "reference type must be /namespace/Name"}
		}
		t.Namespace = body[:slash]
		t.Name = body[slash+1:]
		if strings.Contains(t.Name, "/") {
			return Type{}, &FormatError{Input: s, Reason: "type name contains a slash"}
		}
		return t, nil
	}
	if !primitives[rest] {
		return Type{}, &FormatError{Input: s, Reason: fmt.Sprintf("unknown type literal %q", rest)}
	}
	t.Name = rest
	return t, nil
}

func parseEscapedType(s, whole string) (Type, error) {
	if strings.Contains(s, "/") {
		return Type{}, &FormatError{Input: whole, Reason: "unescaped slash in type fragment"}
	}
	t, err := ParseType(strings.ReplaceAll(s, "%2F", "/"))
	if err != nil {
		return Type{}, &FormatError{Input: whole, Reason: err.(*FormatError).Reason}
	}
	return t, nil
}

// MethodURI is the decoded form of a canonical method identifier.
type MethodURI struct {
	Namespace string
	TypeName  string
	Method    string
	Params    []Type
	Return    Type
}

// String renders the canonical URI. Two MethodURIs are equal exactly when
// their canonical strings are equal.
func (u MethodURI) String() string {
	var b strings.Builder
	b.WriteByte('/')
	b.WriteString(u.Namespace)
	b.WriteByte('/')
	b.WriteString(u.TypeName)
	b.WriteByte('.')
	b.WriteString(u.Method)
	b.WriteByte('(')
	for i, p := range u.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.escaped())
	}
	b.WriteByte(')')
	b.WriteString(u.Return.escaped())
	return b.String()
}

// TypeURI renders the URI of the declaring type, the key used in the class
// hierarchy, e.g. "/name.space/SingleSourceToTarget".
func (u MethodURI) TypeURI() string {
	return "/" + u.Namespace + "/" + u.TypeName
}

// Validate reports whether the URI renders to a string Parse decodes back
// to the same components. The grammar has no default-package form: a method
// with an empty namespace, type or method name has no canonical encoding,
// and neither does a reference type missing its namespace. Callers
// constructing URIs from untrusted input must validate before String.
func (u MethodURI) Validate() error {
	if u.Namespace == "" || u.TypeName == "" || u.Method == "" {
		return &FormatError{Input: u.TypeURI() + "." + u.Method, Reason: "namespace, type and method name must all be present"}
	}
	if strings.ContainsAny(u.Namespace, "/(),") || strings.ContainsAny(u.TypeName, "/(),.") || strings.ContainsAny(u.Method, "/(),") {
		return &FormatError{Input: u.TypeURI() + "." + u.Method, Reason: "grammar delimiter in name segment"}
	}
	for _, p := range u.Params {
		if !p.wellFormed() {
			return &FormatError{Input: p.Fragment(), Reason: "malformed parameter type"}
		}
	}
	if !u.Return.wellFormed() {
		return &FormatError{Input: u.Return.Fragment(), Reason: "malformed return type"}
	}
	return nil
}

// Parse decodes a canonical method URI back into its components.
func Parse(s string) (MethodURI, error) {
	var u MethodURI
	if !strings.HasPrefix(s, "/") {
		return u, &FormatError{Input: s, Reason: "missing leading slash"}
	}
	body := s[1:]
	slash := strings.Index(body, "/")
	if slash <= 0 {
		return u, &FormatError{Input: s, Reason: "missing type segment"}
	}
	u.Namespace = body[:slash]
	rest := body[slash+1:]

	open := strings.Index(rest, "(")
	if open < 0 {
		return u, &FormatError{Input: s, Reason: "missing parameter list"}
	}
	head := rest[:open]
	dot := strings.Index(head, ".")
	if dot <= 0 || dot == len(head)-1 {
		return u, &FormatError{Input: s, Reason: "missing method name"}
	}
	u.TypeName = head[:dot]
	u.Method = head[dot+1:]

	end := strings.Index(rest[open:], ")")
	if end < 0 {
		return u, &FormatError{Input: s, Reason: "unbalanced parameter list"}
	}
	end += open

	params := rest[open+1 : end]
	if params != "" {
		for _, p := range strings.Split(params, ",") {
			if p == "" {
				return u, &FormatError{Input: s, Reason: "empty parameter"}
			}
			t, err := parseEscapedType(p, s)
			if err != nil {
				return u, err
			}
			u.Params = append(u.Params, t)
		}
	}

	ret := rest[end+1:]
	if ret == "" {
		return u, &FormatError{Input: s, Reason: "missing return type"}
	}
	if strings.ContainsAny(ret, "()") {
		return u, &FormatError{Input: s, Reason: "unbalanced parameter list"}
	}
	r, err := parseEscapedType(ret, s)
	if err != nil {
		return u, err
	}
	u.Return = r
	return u, nil
}
