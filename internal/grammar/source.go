package grammar

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultGrammarYAML []byte

// #region file-format
// File is the on-disk grammar definition.
//
//	start: S
//	rules:
//	  - "S -> S '+' T | T"
//
// Quoted tokens are terminals, bare tokens nonterminals, and `|` separates
// alternatives that share a left-hand side.
type File struct {
	Start string   `yaml:"start" json:"start"`
	Rules []string `yaml:"rules" json:"rules"`
}

// #endregion file-format

// #region loaders
// Default returns the embedded arithmetic-expression grammar.
func Default() *Catalog {
	c, err := LoadYAML(strings.NewReader(string(defaultGrammarYAML)))
	if err != nil {
		panic(fmt.Sprintf("embedded grammar: %v", err))
	}
	return c
}

// LoadFile reads a grammar definition from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grammar %s: %w", path, err)
	}
	defer f.Close()
	c, err := LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("load grammar %s: %w", path, err)
	}
	return c, nil
}

// LoadYAML decodes a grammar definition and builds its catalog.
func LoadYAML(r io.Reader) (*Catalog, error) {
	var gf File
	if err := yaml.NewDecoder(r).Decode(&gf); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrConfiguration, err)
	}
	return gf.Catalog()
}

// Catalog parses the file's rules and builds a catalog. An empty start
// defaults to the first rule's left-hand side.
func (gf File) Catalog() (*Catalog, error) {
	rules, err := ParseRules(strings.Join(gf.Rules, "\n"))
	if err != nil {
		return nil, err
	}
	start := gf.Start
	if start == "" && len(rules) > 0 {
		start = rules[0].LHS
	}
	return NewCatalog(start, rules)
}

// #endregion loaders

// #region parse
// ParseRules parses one production group per line. Blank lines and lines
// starting with # are skipped.
func ParseRules(text string) ([]Rule, error) {
	var rules []Rule
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lhs, rhs, ok := strings.Cut(line, "->")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: missing '->' in %q", ErrConfiguration, n+1, line)
		}
		lhs = strings.TrimSpace(lhs)
		if lhs == "" || strings.ContainsAny(lhs, " \t'\"") {
			return nil, fmt.Errorf("%w: line %d: bad left-hand side %q", ErrConfiguration, n+1, lhs)
		}
		alts, err := tokenize(rhs)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrConfiguration, n+1, err)
		}
		for _, alt := range alts {
			rules = append(rules, Rule{LHS: lhs, RHS: alt})
		}
	}
	return rules, nil
}

// tokenize splits a right-hand side into alternatives of symbols.
func tokenize(rhs string) ([][]Symbol, error) {
	alts := [][]Symbol{nil}
	i := 0
	for i < len(rhs) {
		ch := rhs[i]
		switch {
		case ch == ' ' || ch == '\t':
			i++
		case ch == '|':
			alts = append(alts, nil)
			i++
		case ch == '\'' || ch == '"':
			end := strings.IndexByte(rhs[i+1:], ch)
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote at column %d", i+1)
			}
			alts[len(alts)-1] = append(alts[len(alts)-1], T(rhs[i+1:i+1+end]))
			i += end + 2
		default:
			j := i
			for j < len(rhs) && !strings.ContainsRune(" \t|'\"", rune(rhs[j])) {
				j++
			}
			alts[len(alts)-1] = append(alts[len(alts)-1], N(rhs[i:j]))
			i = j
		}
	}
	return alts, nil
}

// #endregion parse
