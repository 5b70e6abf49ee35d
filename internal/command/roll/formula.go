package roll

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	maxDice  = 100
	maxSides = 1000
)

var (
	tokenRegex = regexp.MustCompile(`(?i)(\d*d\d+|\d+|[+\-*/])`)
	diceRegex  = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)

	errEmptyFormula = errors.New("can't parse your formula, try something like `2d6+1d4*2-3`")
	errDivideByZero = errors.New("can't divide by zero")
)

// Term is one operand of a formula: a constant, or Count dice with Sides sides.
type Term struct {
	Op    string
	Count int
	Sides int
	Value int
	Token string
}

func (t Term) isDice() bool { return t.Sides > 0 }

// Formula is a parsed dice expression such as "2d20+1d6-2".
type Formula struct {
	Source string
	Terms  []Term
}

// ParseFormula parses a formula made of dice (NdS), integers and the four
// arithmetic operators. Spaces are ignored.
func ParseFormula(s string) (Formula, error) {
	src := strings.ReplaceAll(s, " ", "")
	tokens := tokenRegex.FindAllString(src, -1)
	if len(tokens) == 0 || strings.Join(tokens, "") != src {
		return Formula{}, errEmptyFormula
	}

	f := Formula{Source: src}
	op := "+"
	for _, tok := range tokens {
		switch tok {
		case "+", "-", "*", "/":
			op = tok
			continue
		}
		t, err := parseTerm(tok)
		if err != nil {
			return Formula{}, fmt.Errorf("failed to evaluate `%s`: %w", tok, err)
		}
		if len(f.Terms) == 0 && (op == "*" || op == "/") {
			return Formula{}, errors.New("can't multiply or divide by nothing")
		}
		t.Op = op
		f.Terms = append(f.Terms, t)
		op = "+"
	}
	if len(f.Terms) == 0 {
		return Formula{}, errEmptyFormula
	}
	return f, nil
}

func parseTerm(tok string) (Term, error) {
	if m := diceRegex.FindStringSubmatch(tok); m != nil {
		count := 1
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 {
				return Term{}, errors.New("invalid dice count")
			}
			count = n
		}
		sides, err := strconv.Atoi(m[2])
		if err != nil || sides < 2 {
			return Term{}, errors.New("invalid dice sides")
		}
		if count > maxDice || sides > maxSides {
			return Term{}, fmt.Errorf("too big. max %d dice, %d sides", maxDice, maxSides)
		}
		return Term{Count: count, Sides: sides, Token: tok}, nil
	}

	n, err := strconv.Atoi(tok)
	if err != nil {
		return Term{}, errors.New("not a number or dice")
	}
	return Term{Value: n, Token: tok}, nil
}

// Result is an evaluated formula.
type Result struct {
	Total int
	// Calculation shows every roll, e.g. "`2d6` [3, 5] + `1`".
	Calculation string
}

type evaluated struct {
	op    string
	value int
	desc  string
}

// Roll evaluates the formula, drawing each die from intn (which returns a
// value in [0, n)). Multiplication and division bind tighter than addition
// and subtraction; division truncates.
func (f Formula) Roll(intn func(n int) int) (Result, error) {
	var merged []evaluated
	for _, t := range f.Terms {
		e := evaluated{op: t.Op, value: t.Value, desc: fmt.Sprintf("`%d`", t.Value)}
		if t.isDice() {
			rolls := make([]string, t.Count)
			e.value = 0
			for i := range rolls {
				r := intn(t.Sides) + 1
				e.value += r
				rolls[i] = strconv.Itoa(r)
			}
			e.desc = fmt.Sprintf("`%s` [%s]", t.Token, strings.Join(rolls, ", "))
		}

		if e.op != "*" && e.op != "/" {
			merged = append(merged, e)
			continue
		}
		prev := &merged[len(merged)-1]
		if e.op == "/" {
			if e.value == 0 {
				return Result{}, errDivideByZero
			}
			prev.value /= e.value
		} else {
			prev.value *= e.value
		}
		prev.desc = fmt.Sprintf("%s %s %s", prev.desc, e.op, e.desc)
	}

	var res Result
	var details []string
	for i, e := range merged {
		if i > 0 {
			details = append(details, e.op)
		}
		details = append(details, e.desc)
		if e.op == "-" {
			res.Total -= e.value
		} else {
			res.Total += e.value
		}
	}
	res.Calculation = strings.Join(details, " ")
	return res, nil
}
