package constraint

import (
	"fmt"

	"github.com/featureforge/plvalidate/debug"
)

// Parse lexes and parses a constraint expression string into an AST.
// Parse failures are returned as plain errors; the package never panics
// on malformed input.
func Parse(src string) (Node, error) {
	if debug.Parse() {
		debug.Logf("constraint.Parse: %q\n", src)
	}
	toks, err := tokenize(src)
	if err != nil {
		return nil, fmt.Errorf("lex constraint: %w", err)
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty constraint expression")
	}
	node, err := parseImpl(toks)
	if err != nil {
		return nil, fmt.Errorf("parse constraint: %w", err)
	}
	return node, nil
}

// parseImpl handles "=>", right-associative: or ( "=>" constraint )?
func parseImpl(toks []token) (Node, error) {
	idx, found := findTopLevel(toks, tImpl)
	if !found {
		return parseOr(toks)
	}
	left, err := parseOr(toks[:idx])
	if err != nil {
		return nil, err
	}
	right, err := parseImpl(toks[idx+1:])
	if err != nil {
		return nil, err
	}
	return &Implication{Left: left, Right: right}, nil
}

// parseOr handles "||", right-associative: and ( "||" or )?
func parseOr(toks []token) (Node, error) {
	idx, found := findTopLevel(toks, tOr)
	if !found {
		return parseAnd(toks)
	}
	left, err := parseAnd(toks[:idx])
	if err != nil {
		return nil, err
	}
	right, err := parseOr(toks[idx+1:])
	if err != nil {
		return nil, err
	}
	return &Or{Left: left, Right: right}, nil
}

// parseAnd handles "&&", right-associative: cmp ( "&&" and )?
func parseAnd(toks []token) (Node, error) {
	idx, found := findTopLevel(toks, tAnd)
	if !found {
		return parseCmp(toks)
	}
	left, err := parseCmp(toks[:idx])
	if err != nil {
		return nil, err
	}
	right, err := parseAnd(toks[idx+1:])
	if err != nil {
		return nil, err
	}
	return &And{Left: left, Right: right}, nil
}

var cmpKinds = []tokenKind{tGe, tLe, tEq, tNe, tGt, tLt}

var cmpOpByKind = map[tokenKind]CmpOp{
	tGe: CmpGe, tLe: CmpLe, tEq: CmpEq, tNe: CmpNe, tGt: CmpGt, tLt: CmpLt,
}

// parseCmp handles a single, non-associative relational comparison:
// expr ( RELOP expr )?
func parseCmp(toks []token) (Node, error) {
	idx, found := findTopLevelAny(toks, cmpKinds)
	if !found {
		return parseExpr(toks)
	}
	left, err := parseExpr(toks[:idx])
	if err != nil {
		return nil, err
	}
	right, err := parseExpr(toks[idx+1:])
	if err != nil {
		return nil, err
	}
	return &Comparison{Op: cmpOpByKind[toks[idx].kind], Left: left, Right: right}, nil
}

var arithKinds = []tokenKind{tPlus, tMinus, tStar, tSlash}

var arithOpByKind = map[tokenKind]ArithOp{
	tPlus: ArithAdd, tMinus: ArithSub, tStar: ArithMul, tSlash: ArithDiv,
}

// parseExpr handles arithmetic, right-associative: atom ( ARITHOP expr )?
func parseExpr(toks []token) (Node, error) {
	idx, found := findTopLevelAny(toks, arithKinds)
	if !found {
		return parseAtom(toks)
	}
	left, err := parseAtom(toks[:idx])
	if err != nil {
		return nil, err
	}
	right, err := parseExpr(toks[idx+1:])
	if err != nil {
		return nil, err
	}
	return &Arith{Op: arithOpByKind[toks[idx].kind], Left: left, Right: right}, nil
}

// parseAtom handles:
//
//	NOT atom | IDENT "is selected" | IDENT "." IDENT | "true" | "false" |
//	INTEGER | STRING | "(" constraint ")"
//
// The parenthesized form is not itself an AST node — it is unwrapped to
// whatever it contains, per spec.md §4.3.
func parseAtom(toks []token) (Node, error) {
	if len(toks) == 0 {
		return nil, fmt.Errorf("unexpected end of expression")
	}
	if toks[0].kind == tNot {
		inner, err := parseAtom(toks[1:])
		if err != nil {
			return nil, err
		}
		return &Not{Inner: inner}, nil
	}
	if toks[0].kind == tLParen {
		depth := 0
		end := -1
		for i, tk := range toks {
			switch tk.kind {
			case tLParen:
				depth++
			case tRParen:
				depth--
				if depth == 0 {
					end = i
				}
			}
			if end != -1 {
				break
			}
		}
		if end == -1 {
			return nil, fmt.Errorf("unbalanced parentheses")
		}
		if end != len(toks)-1 {
			return nil, fmt.Errorf("unexpected tokens after closing parenthesis")
		}
		return parseImpl(toks[1:end])
	}

	switch toks[0].kind {
	case tTrue:
		if len(toks) != 1 {
			return nil, trailingTokensErr(toks)
		}
		return &BoolLit{Value: true}, nil
	case tFalse:
		if len(toks) != 1 {
			return nil, trailingTokensErr(toks)
		}
		return &BoolLit{Value: false}, nil
	case tInt:
		if len(toks) != 1 {
			return nil, trailingTokensErr(toks)
		}
		return &IntLit{Value: toks[0].intVal}, nil
	case tString:
		if len(toks) != 1 {
			return nil, trailingTokensErr(toks)
		}
		return &StringLit{Value: toks[0].str}, nil
	case tIdent:
		if len(toks) == 3 && toks[1].kind == tIsWord && toks[2].kind == tSelectedWord {
			return &FeatureSelected{FeatureID: toks[0].str}, nil
		}
		if len(toks) == 3 && toks[1].kind == tDot && toks[2].kind == tIdent {
			return &ParamRef{FeatureID: toks[0].str, Param: toks[2].str}, nil
		}
		return nil, fmt.Errorf("malformed atom starting with identifier %q", toks[0].str)
	default:
		return nil, fmt.Errorf("unexpected token in expression")
	}
}

func trailingTokensErr(toks []token) error {
	return fmt.Errorf("unexpected trailing tokens after literal (%d extra)", len(toks)-1)
}

// findTopLevel returns the index of the first occurrence of kind at
// parenthesis depth 0, scanning left to right.
func findTopLevel(toks []token, kind tokenKind) (int, bool) {
	return findTopLevelAny(toks, []tokenKind{kind})
}

// findTopLevelAny is findTopLevel generalized to a set of candidate
// operator kinds; it returns the first match regardless of which kind it
// is, which is what makes comparison and arithmetic single-pass.
func findTopLevelAny(toks []token, kinds []tokenKind) (int, bool) {
	depth := 0
	for i, tk := range toks {
		switch tk.kind {
		case tLParen:
			depth++
			continue
		case tRParen:
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		for _, k := range kinds {
			if tk.kind == k {
				return i, true
			}
		}
	}
	return 0, false
}
