// Package analysis provides semantic token analysis for DWScript.
package analysis

import (
	"log"
	"sort"
	"unicode/utf16"

	"github.com/cwbudde/go-dws/pkg/ast"
	"github.com/cwbudde/go-dws/pkg/token"
)

// CollectSemanticTokens traverses the AST and collects semantic tokens.
func CollectSemanticTokens(astRoot *ast.Program, legend *SemanticTokensLegend) ([]SemanticToken, error) {
	if astRoot == nil || legend == nil {
		return nil, nil
	}

	collector := &tokenCollector{
		legend:      legend,
		tokens:      make([]SemanticToken, 0),
		funcReturns: collectFunctionReturnInfo(astRoot),
	}

	// Traverse the AST
	ast.Inspect(astRoot, collector.visit)

	// Sort tokens by position (line, then character)
	sort.Slice(collector.tokens, func(i, j int) bool {
		if collector.tokens[i].Line != collector.tokens[j].Line {
			return collector.tokens[i].Line < collector.tokens[j].Line
		}
		return collector.tokens[i].StartChar < collector.tokens[j].StartChar
	})

	return collector.tokens, nil
}

// tokenCollector holds state during AST traversal.
type tokenCollector struct {
	legend *SemanticTokensLegend
	tokens []SemanticToken

	// funcReturns maps a declared function/procedure name to whether it
	// has a codomain (true) or is no-return (false). Resolved from a flat
	// scan of the same AST rather than a binder, since the checker is out
	// of scope here (spec §6: "overridden to function (or keyword for a
	// no-return codomain) when the resolved type is a function type").
	funcReturns map[string]bool
}

// collectFunctionReturnInfo flattens every function/procedure declaration
// in root into a name -> has-codomain map, ignoring scope. Two
// differently-scoped declarations sharing a name will collide; this is an
// accepted simplification in the absence of a binder (see DESIGN.md).
func collectFunctionReturnInfo(root ast.Node) map[string]bool {
	info := make(map[string]bool)
	ast.Inspect(root, func(node ast.Node) bool {
		fn, ok := node.(*ast.FunctionDecl)
		if !ok || fn == nil || fn.Name == nil {
			return true
		}
		info[fn.Name.Value] = fn.ReturnType != nil
		return true
	})
	return info
}

// visit is called for each AST node during traversal.
func (tc *tokenCollector) visit(node ast.Node) bool {
	if node == nil {
		return true
	}

	// Get node position
	pos := node.Pos()
	if !pos.IsValid() {
		return true // Skip nodes without valid positions
	}

	// Classify node and add tokens
	switch n := node.(type) {
	// Literals
	case *ast.StringLiteral:
		tc.addToken(pos, utf16Length(n.Value)+2, TokenTypeString, 0) // +2 for quotes
	case *ast.CharLiteral:
		tc.addToken(pos, utf16Length(n.Token.Literal), TokenTypeString, 0)
	case *ast.IntegerLiteral:
		tc.addToken(pos, utf16Length(n.Token.Literal), TokenTypeNumber, 0)
	case *ast.FloatLiteral:
		tc.addToken(pos, utf16Length(n.Token.Literal), TokenTypeNumber, 0)
	case *ast.BooleanLiteral:
		tc.addToken(pos, utf16Length(n.Token.Literal), TokenTypeKeyword, 0)
	case *ast.NilLiteral:
		tc.addToken(pos, 3, TokenTypeKeyword, 0) // "nil" - always 3 chars

	// Variable declarations with declaration+definition modifiers
	case *ast.VarDeclStatement:
		for _, name := range n.Names {
			if name != nil {
				namePos := name.Pos()
				tc.addToken(namePos, utf16Length(name.Value), TokenTypeVariable,
					tc.legend.GetModifierMask(TokenModifierDeclaration, TokenModifierDefinition))
			}
		}

	// Constant declarations with declaration, definition, and readonly modifiers
	case *ast.ConstDecl:
		if n.Name != nil {
			namePos := n.Name.Pos()
			tc.addToken(namePos, utf16Length(n.Name.Value), TokenTypeVariable,
				tc.legend.GetModifierMask(TokenModifierDeclaration, TokenModifierDefinition, TokenModifierReadonly))
		}

	// Function/procedure declarations. The resolved type is a function
	// type, so per spec §6 the token type is overridden to "function" (or
	// "keyword" when the declaration has no codomain, i.e. is a
	// procedure); methods keep their own token type but get the same
	// no-return override.
	case *ast.FunctionDecl:
		if n.Name != nil {
			namePos := n.Name.Pos()
			modifiers := tc.legend.GetModifierMask(TokenModifierDeclaration, TokenModifierDefinition)

			tokenType := TokenTypeFunction
			if n.ClassName != nil {
				tokenType = TokenTypeMethod
				if n.IsAbstract {
					modifiers |= tc.legend.GetModifierMask(TokenModifierAbstract)
				}
			}
			if n.ReturnType == nil {
				tokenType = TokenTypeKeyword
			}
			tc.addToken(namePos, utf16Length(n.Name.Value), tokenType, modifiers)
		}
		// Mark parameters with declaration modifier
		if n.Parameters != nil {
			for _, param := range n.Parameters {
				if param.Name != nil {
					paramPos := param.Name.Pos()
					tc.addToken(paramPos, utf16Length(param.Name.Value), TokenTypeParameter,
						tc.legend.GetModifierMask(TokenModifierDeclaration))
				}
			}
		}

	// Class declarations
	case *ast.ClassDecl:
		if n.Name != nil {
			namePos := n.Name.Pos()
			tc.addToken(namePos, utf16Length(n.Name.Value), TokenTypeClass,
				tc.legend.GetModifierMask(TokenModifierDeclaration, TokenModifierDefinition))
		}

	// Interface declarations
	case *ast.InterfaceDecl:
		if n.Name != nil {
			namePos := n.Name.Pos()
			tc.addToken(namePos, utf16Length(n.Name.Value), TokenTypeInterface,
				tc.legend.GetModifierMask(TokenModifierDeclaration, TokenModifierDefinition))
		}

	// Field declarations (class fields)
	case *ast.FieldDecl:
		if n.Name != nil {
			fieldPos := n.Name.Pos()
			modifiers := tc.legend.GetModifierMask(TokenModifierDeclaration, TokenModifierDefinition)
			if n.IsClassVar {
				modifiers |= tc.legend.GetModifierMask(TokenModifierStatic)
			}
			tc.addToken(fieldPos, utf16Length(n.Name.Value), TokenTypeProperty, modifiers)
		}

	// Property declarations
	case *ast.PropertyDecl:
		if n.Name != nil {
			propPos := n.Name.Pos()
			modifiers := tc.legend.GetModifierMask(TokenModifierDeclaration, TokenModifierDefinition)
			// Add readonly modifier if property has no setter (WriteSpec is nil)
			if n.WriteSpec == nil {
				modifiers |= tc.legend.GetModifierMask(TokenModifierReadonly)
			}
			tc.addToken(propPos, utf16Length(n.Name.Value), TokenTypeProperty, modifiers)
		}

	// Type declarations
	case *ast.TypeDeclaration:
		if n.Name != nil {
			typePos := n.Name.Pos()
			tc.addToken(typePos, utf16Length(n.Name.Value), TokenTypeType,
				tc.legend.GetModifierMask(TokenModifierDeclaration, TokenModifierDefinition))
		}

	// Enum declarations
	case *ast.EnumDecl:
		if n.Name != nil {
			enumPos := n.Name.Pos()
			tc.addToken(enumPos, utf16Length(n.Name.Value), TokenTypeEnum,
				tc.legend.GetModifierMask(TokenModifierDeclaration, TokenModifierDefinition))
		}
		// Mark enum members - Note: EnumValue.Name is a string
		for _, member := range n.Values {
			if member.Name != "" && len(member.Name) > 0 {
				// We can't get position for enum members easily as Name is just a string
				// Skip for now - would need token position from parser
			}
		}

	// Member access (e.g., obj.field)
	case *ast.MemberAccessExpression:
		if n.Member != nil {
			memberPos := n.Member.Pos()
			tc.addToken(memberPos, utf16Length(n.Member.Value), TokenTypeProperty, 0)
		}

	// Function calls (e.g., Foo(), not method calls)
	case *ast.CallExpression:
		// If the function is a simple identifier (not a member access), tag it as
		// function, or keyword if it names a known no-codomain procedure.
		if ident, ok := n.Function.(*ast.Identifier); ok && ident != nil {
			funcPos := ident.Pos()
			tokenType := TokenTypeFunction
			if hasCodomain, known := tc.funcReturns[ident.Value]; known && !hasCodomain {
				tokenType = TokenTypeKeyword
			}
			tc.addToken(funcPos, utf16Length(ident.Value), tokenType, 0)
		}
		// If it's a member access, it will be handled by MethodCallExpression or MemberAccessExpression

	// Method calls (e.g., obj.Method())
	case *ast.MethodCallExpression:
		if n.Method != nil {
			methodPos := n.Method.Pos()
			tc.addToken(methodPos, utf16Length(n.Method.Value), TokenTypeMethod, 0)
		}

	// Type annotations - Note: Name is a string
	case *ast.TypeAnnotation:
		if n.Name != "" && len(n.Name) > 0 {
			// TypeAnnotation has position from Token
			tc.addToken(n.Token.Pos, utf16Length(n.Name), TokenTypeType, 0)
		}
	}

	return true // Continue traversal
}

// addToken adds a semantic token to the collection.
func (tc *tokenCollector) addToken(pos token.Position, length int, tokenType string, modifiers uint32) {
	if !pos.IsValid() || length <= 0 {
		return
	}

	// Convert 1-based position to 0-based
	line := uint32(pos.Line - 1)
	if line < 0 {
		line = 0
	}
	startChar := uint32(pos.Column - 1)
	if startChar < 0 {
		startChar = 0
	}

	// Get token type index
	typeIndex := tc.legend.GetTokenTypeIndex(tokenType)
	if typeIndex < 0 {
		log.Printf("Warning: unknown token type: %s\n", tokenType)
		return
	}

	tc.tokens = append(tc.tokens, SemanticToken{
		Line:      line,
		StartChar: startChar,
		Length:    uint32(length),
		TokenType: uint32(typeIndex),
		Modifiers: modifiers,
	})
}

// EncodeSemanticTokens encodes tokens in LSP delta format.
// The LSP protocol uses a delta encoding where each token is represented as:
// [deltaLine, deltaStartChar, length, tokenType, tokenModifiers]
func EncodeSemanticTokens(tokens []SemanticToken) []uint32 {
	if len(tokens) == 0 {
		return []uint32{}
	}

	encoded := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevChar uint32

	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		deltaChar := token.StartChar
		if deltaLine == 0 {
			deltaChar = token.StartChar - prevChar
		}

		encoded = append(encoded,
			deltaLine,
			deltaChar,
			token.Length,
			token.TokenType,
			token.Modifiers,
		)

		prevLine = token.Line
		prevChar = token.StartChar
	}

	return encoded
}

// utf16Length calculates the length of a string in UTF-16 code units.
// LSP uses UTF-16 for character positions and lengths.
func utf16Length(s string) int {
	return len(utf16.Encode([]rune(s)))
}
