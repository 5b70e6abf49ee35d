package roll

import (
	"fmt"
	"math/rand/v2"

	"github.com/keshon/slashkit/internal/command/core"
	"github.com/keshon/slashkit/pkg/cmd"
)

type RollCommand struct {
	// Intn draws a die roll in [0, n); nil uses math/rand.
	Intn func(n int) int
}

func (c *RollCommand) Name() string        { return "roll" }
func (c *RollCommand) Description() string { return "Roll dice like `2d20+1d6-2`" }

func (c *RollCommand) Params() []cmd.Param {
	return []cmd.Param{
		cmd.Arg("formula").Describe("Supports `2d6+1d4*2-3` and similar math"),
	}
}

func (c *RollCommand) Run(ctx cmd.Context, formula Formula) error {
	intn := c.Intn
	if intn == nil {
		intn = rand.IntN
	}
	res, err := formula.Roll(intn)
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("🎲 **User Input**: `%s`\n**Calculation**: %s\n**Result**: **%d**",
		formula.Source, res.Calculation, res.Total))
}

// convertFormula turns a raw option value into a Formula.
func convertFormula(raw any) (Formula, error) {
	s, ok := raw.(string)
	if !ok {
		return Formula{}, fmt.Errorf("formula must be text, got %T", raw)
	}
	return ParseFormula(s)
}

// Register adds the roll slash command and the Formula converter it relies on.
func Register(r core.Registrar) error {
	cmd.RegisterConverter(r.Registry(), convertFormula)
	c := &RollCommand{}
	return r.Slash(c.Name(), c.Description(), c.Run, c.Params()...)
}
