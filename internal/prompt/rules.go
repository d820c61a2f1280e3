package prompt

import "strings"

// Family names a documentation comment convention.
type Family string

const (
	// FamilyJSDoc documents with /** */ blocks and @param/@returns tags.
	FamilyJSDoc Family = "jsdoc"
	// FamilyCSharpDoc documents with /// XML comments.
	FamilyCSharpDoc Family = "csdoc"
)

// RuleSet is the fixed rule list given to the agent for one comment convention.
type RuleSet struct {
	Family Family
	Rules  []string
}

var (
	// JSDocRules apply to JavaScript and TypeScript.
	JSDocRules = RuleSet{
		Family: FamilyJSDoc,
		Rules: []string{
			"Use a /** ... */ JSDoc block.",
			"Start with a summary of one or two lines describing what the code does.",
			"Add an @param tag with type and meaning for every parameter.",
			"Add an @returns tag when the code returns a value.",
			"Add an @throws tag for errors the code throws explicitly.",
			"Do not change runtime logic.",
			"Do not reformat or reorder code beyond adding comments.",
		},
	}
	// CSharpDocRules apply to C#.
	CSharpDocRules = RuleSet{
		Family: FamilyCSharpDoc,
		Rules: []string{
			"Use /// XML documentation comments.",
			"Start with a <summary> element of one or two lines describing what the code does.",
			"Add a <param name=\"...\"> element for every parameter.",
			"Add a <returns> element when the member returns a value.",
			"Add an <exception cref=\"...\"> element for exceptions the code throws explicitly.",
			"Do not change runtime logic.",
			"Do not reformat or reorder code beyond adding comments.",
		},
	}

	languageFamilies = map[string]Family{
		"csharp":          FamilyCSharpDoc,
		"javascript":      FamilyJSDoc,
		"javascriptreact": FamilyJSDoc,
		"typescript":      FamilyJSDoc,
		"typescriptreact": FamilyJSDoc,
	}
)

// RulesFor selects the rule set by the target's language family; unknown languages use fallback.
func RulesFor(languageID string, fallback Family) RuleSet {
	family, known := languageFamilies[strings.ToLower(languageID)]
	if !known {
		family = fallback
	}
	if family == FamilyCSharpDoc {
		return CSharpDocRules
	}
	return JSDocRules
}
