// Package generator builds random arithmetic problems.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/verte-zerg/tuimath/internal/model"
)

// Generator produces randomized problems from validated settings.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed for deterministic replay.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate picks an enabled operation uniformly at random and builds one
// problem for it. With no operations enabled it falls back to
// multiplication rather than failing.
func (g *Generator) Generate(settings model.Settings) model.Problem {
	ops := settings.Enabled()
	if len(ops) == 0 {
		ops = []model.Operation{model.OpMultiplication}
	}
	op := ops[g.rnd.Intn(len(ops))]
	os := settings.ByOperation(op)
	switch op {
	case model.OpAddition:
		return g.addition(os)
	case model.OpSubtraction:
		return g.subtraction(os)
	case model.OpDivision:
		return g.division(os)
	default:
		return g.multiplication(os)
	}
}

func (g *Generator) addition(os model.OperationSettings) model.Problem {
	a := g.intn(os.A)
	b := g.intn(os.B)
	return model.Problem{
		Question:  fmt.Sprintf("%d + %d", a, b),
		Answer:    a + b,
		Operation: model.OpAddition,
	}
}

// subtraction draws both operands, shows their sum as the minuend, and
// subtracts one of them. The displayed subtrahend and the answer both stay
// within the configured ranges and the result is never negative.
func (g *Generator) subtraction(os model.OperationSettings) model.Problem {
	a := g.intn(os.A)
	b := g.intn(os.B)
	sum := a + b
	if g.rnd.Float64() < 0.5 {
		return model.Problem{
			Question:  fmt.Sprintf("%d - %d", sum, a),
			Answer:    b,
			Operation: model.OpSubtraction,
		}
	}
	return model.Problem{
		Question:  fmt.Sprintf("%d - %d", sum, b),
		Answer:    a,
		Operation: model.OpSubtraction,
	}
}

func (g *Generator) multiplication(os model.OperationSettings) model.Problem {
	a := g.intn(os.A)
	b := g.intn(os.B)
	question := fmt.Sprintf("%d × %d", a, b)
	if g.rnd.Float64() < 0.5 {
		question = fmt.Sprintf("%d × %d", b, a)
	}
	return model.Problem{
		Question:  question,
		Answer:    a * b,
		Operation: model.OpMultiplication,
	}
}

// division draws the divisor and the quotient and multiplies them into the
// dividend, so every question divides evenly.
func (g *Generator) division(os model.OperationSettings) model.Problem {
	divisor := g.intn(os.A)
	quotient := g.intn(os.B)
	return model.Problem{
		Question:  fmt.Sprintf("%d ÷ %d", divisor*quotient, divisor),
		Answer:    quotient,
		Operation: model.OpDivision,
	}
}

func (g *Generator) intn(r model.Range) int {
	return g.rnd.Intn(r.Max-r.Min+1) + r.Min
}
