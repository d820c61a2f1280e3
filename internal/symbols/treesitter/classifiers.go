//go:build cgo

package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/temirov/doccomments/internal/symbols"
)

var javaScriptFunctionValueTypes = map[string]struct{}{
	"arrow_function":      {},
	"function":            {},
	"function_expression": {},
	"generator_function":  {},
}

func classifyJavaScript(node *sitter.Node, _ symbols.Kind, source []byte) (match, bool) {
	nameNode := node.ChildByFieldName(nameField)
	switch node.Type() {
	case "function_declaration", "generator_function_declaration", "function_signature":
		return match{kind: symbols.KindFunction, name: nameNode, extent: exportedExtent(node)}, true
	case "method_definition", "method_signature", "abstract_method_signature":
		if nameNode != nil && nameNode.Content(source) == constructorName {
			return match{kind: symbols.KindConstructor, name: nameNode}, true
		}
		return match{kind: symbols.KindMethod, name: nameNode}, true
	case "class_declaration", "abstract_class_declaration":
		return match{kind: symbols.KindClass, name: nameNode, extent: exportedExtent(node)}, true
	case "interface_declaration":
		return match{kind: symbols.KindInterface, name: nameNode, extent: exportedExtent(node)}, true
	case "enum_declaration":
		return match{kind: symbols.KindEnum, name: nameNode, extent: exportedExtent(node)}, true
	case "internal_module", "module":
		return match{kind: symbols.KindNamespace, name: nameNode}, true
	case "public_field_definition", "field_definition":
		propertyName := node.ChildByFieldName("property")
		if propertyName == nil {
			propertyName = nameNode
		}
		if value := node.ChildByFieldName(valueField); value != nil && isJavaScriptFunctionValue(value) {
			return match{kind: symbols.KindMethod, name: propertyName}, true
		}
		return match{kind: symbols.KindProperty, name: propertyName}, true
	case "variable_declarator":
		value := node.ChildByFieldName(valueField)
		if value == nil || !isJavaScriptFunctionValue(value) {
			return match{}, false
		}
		return match{kind: symbols.KindFunction, name: nameNode, extent: declarationExtent(node)}, true
	}
	return match{}, false
}

func isJavaScriptFunctionValue(node *sitter.Node) bool {
	_, found := javaScriptFunctionValueTypes[node.Type()]
	return found
}

// declarationExtent widens a lone declarator to its lexical declaration, keeping "const" and "export" in the span.
func declarationExtent(declarator *sitter.Node) *sitter.Node {
	declaration := declarator.Parent()
	if declaration == nil || declaration.NamedChildCount() != 1 {
		return declarator
	}
	return exportedExtent(declaration)
}

func classifyCSharp(node *sitter.Node, _ symbols.Kind, _ []byte) (match, bool) {
	nameNode := node.ChildByFieldName(nameField)
	switch node.Type() {
	case "class_declaration", "record_declaration":
		return match{kind: symbols.KindClass, name: nameNode}, true
	case "struct_declaration", "record_struct_declaration":
		return match{kind: symbols.KindStruct, name: nameNode}, true
	case "interface_declaration":
		return match{kind: symbols.KindInterface, name: nameNode}, true
	case "enum_declaration":
		return match{kind: symbols.KindEnum, name: nameNode}, true
	case "method_declaration", "destructor_declaration":
		return match{kind: symbols.KindMethod, name: nameNode}, true
	case "constructor_declaration":
		return match{kind: symbols.KindConstructor, name: nameNode}, true
	case "local_function_statement":
		return match{kind: symbols.KindFunction, name: nameNode}, true
	case "operator_declaration", "conversion_operator_declaration":
		return match{kind: symbols.KindOperator, name: nameNode}, true
	case "property_declaration", "indexer_declaration":
		return match{kind: symbols.KindProperty, name: nameNode}, true
	case "event_declaration":
		return match{kind: symbols.KindEvent, name: nameNode}, true
	case "namespace_declaration", "file_scoped_namespace_declaration":
		return match{kind: symbols.KindNamespace, name: nameNode}, true
	}
	return match{}, false
}

func classifyGo(node *sitter.Node, _ symbols.Kind, _ []byte) (match, bool) {
	nameNode := node.ChildByFieldName(nameField)
	switch node.Type() {
	case "function_declaration":
		return match{kind: symbols.KindFunction, name: nameNode}, true
	case "method_declaration":
		return match{kind: symbols.KindMethod, name: nameNode}, true
	case "method_elem", "method_spec":
		return match{kind: symbols.KindMethod, name: nameNode}, true
	case "type_spec":
		kind := symbols.KindClass
		if typeNode := node.ChildByFieldName(typeField); typeNode != nil {
			switch typeNode.Type() {
			case "struct_type":
				kind = symbols.KindStruct
			case "interface_type":
				kind = symbols.KindInterface
			}
		}
		extent := node
		if declaration := node.Parent(); declaration != nil && declaration.Type() == "type_declaration" && declaration.NamedChildCount() == 1 {
			extent = declaration
		}
		return match{kind: kind, name: nameNode, extent: extent}, true
	}
	return match{}, false
}

func classifyPython(node *sitter.Node, parentKind symbols.Kind, source []byte) (match, bool) {
	nameNode := node.ChildByFieldName(nameField)
	extent := node
	if parent := node.Parent(); parent != nil && parent.Type() == "decorated_definition" {
		extent = parent
	}
	switch node.Type() {
	case "function_definition":
		if parentKind != symbols.KindClass {
			return match{kind: symbols.KindFunction, name: nameNode, extent: extent}, true
		}
		if nameNode != nil && nameNode.Content(source) == pythonInitName {
			return match{kind: symbols.KindConstructor, name: nameNode, extent: extent}, true
		}
		return match{kind: symbols.KindMethod, name: nameNode, extent: extent}, true
	case "class_definition":
		return match{kind: symbols.KindClass, name: nameNode, extent: extent}, true
	}
	return match{}, false
}
