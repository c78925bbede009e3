// Package builtins holds the completion/hover detail tables for artic's
// primitive types and intrinsic functions (spec §6, grounded in
// original_source/artic-lsp/src/server.cpp's completion_item snippets:
// "bool", "i8"/"i16"/"i32"/"i64", "u8"/"u16"/"u32"/"u64", "f16"/"f32"/"f64",
// "simd"). These are ambient completion data, not parsed from any source
// file, so the package defines its own small types rather than depending on
// a checker that doesn't exist in this frontend.
package builtins

// ParameterInfo describes one parameter of a builtin function signature.
type ParameterInfo struct {
	Name       string
	Type       string
	IsOptional bool
}

// FunctionSignature describes one builtin function's display signature.
type FunctionSignature struct {
	Name          string
	Parameters    []ParameterInfo
	ReturnType    string
	Documentation string
}

// PrimitiveTypes lists artic's primitive type keywords, in the order the
// original server's completion handler offers them.
var PrimitiveTypes = []string{
	"bool",
	"i8", "i16", "i32", "i64",
	"u8", "u16", "u32", "u64",
	"f16", "f32", "f64",
}

// GetBuiltinSignature returns the signature for a builtin function, or nil
// if functionName does not name one.
func GetBuiltinSignature(functionName string) *FunctionSignature {
	if sig, ok := builtinSignatures[functionName]; ok {
		return &sig
	}
	return nil
}

// IsBuiltinFunction reports whether functionName names a builtin function.
func IsBuiltinFunction(functionName string) bool {
	_, ok := builtinSignatures[functionName]
	return ok
}

// IsPrimitiveType reports whether typeName names one of artic's primitive
// types.
func IsPrimitiveType(typeName string) bool {
	for _, t := range PrimitiveTypes {
		if t == typeName {
			return true
		}
	}
	return false
}

// builtinSignatures contains the intrinsic functions every compile unit
// resolves without an explicit declaration. artic's own stdlib lives
// outside the compile frontend this server drives, so only the small set
// of intrinsics a checker would otherwise bind directly is modeled here.
var builtinSignatures = map[string]FunctionSignature{
	"bitcast": {
		Name: "bitcast",
		Parameters: []ParameterInfo{
			{Name: "x", Type: "T", IsOptional: false},
		},
		ReturnType:    "U",
		Documentation: "Reinterprets the bits of x as type U without conversion.",
	},
	"select": {
		Name: "select",
		Parameters: []ParameterInfo{
			{Name: "cond", Type: "bool", IsOptional: false},
			{Name: "a", Type: "T", IsOptional: false},
			{Name: "b", Type: "T", IsOptional: false},
		},
		ReturnType:    "T",
		Documentation: "Returns a when cond is true, otherwise b.",
	},
	"insert": {
		Name: "insert",
		Parameters: []ParameterInfo{
			{Name: "v", Type: "simd[T]", IsOptional: false},
			{Name: "index", Type: "i32", IsOptional: false},
			{Name: "x", Type: "T", IsOptional: false},
		},
		ReturnType:    "simd[T]",
		Documentation: "Returns v with lane index replaced by x.",
	},
	"extract": {
		Name: "extract",
		Parameters: []ParameterInfo{
			{Name: "v", Type: "simd[T]", IsOptional: false},
			{Name: "index", Type: "i32", IsOptional: false},
		},
		ReturnType:    "T",
		Documentation: "Returns lane index of v.",
	},
	"sqrt": {
		Name: "sqrt",
		Parameters: []ParameterInfo{
			{Name: "x", Type: "f32", IsOptional: false},
		},
		ReturnType:    "f32",
		Documentation: "Returns the square root of x.",
	},
	"fabs": {
		Name: "fabs",
		Parameters: []ParameterInfo{
			{Name: "x", Type: "f32", IsOptional: false},
		},
		ReturnType:    "f32",
		Documentation: "Returns the absolute value of x.",
	},
	"pow": {
		Name: "pow",
		Parameters: []ParameterInfo{
			{Name: "base", Type: "f32", IsOptional: false},
			{Name: "exp", Type: "f32", IsOptional: false},
		},
		ReturnType:    "f32",
		Documentation: "Returns base raised to exp.",
	},
	"min": {
		Name: "min",
		Parameters: []ParameterInfo{
			{Name: "a", Type: "T", IsOptional: false},
			{Name: "b", Type: "T", IsOptional: false},
		},
		ReturnType:    "T",
		Documentation: "Returns the smaller of a and b.",
	},
	"max": {
		Name: "max",
		Parameters: []ParameterInfo{
			{Name: "a", Type: "T", IsOptional: false},
			{Name: "b", Type: "T", IsOptional: false},
		},
		ReturnType:    "T",
		Documentation: "Returns the larger of a and b.",
	},
	"undef": {
		Name:          "undef",
		Parameters:    []ParameterInfo{},
		ReturnType:    "T",
		Documentation: "Returns an unspecified value of type T.",
	},
}
