package vm

import (
	"bytes"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/zurustar/bna/pkg/opcode"
	"github.com/zurustar/bna/pkg/program"
	"github.com/zurustar/bna/pkg/value"
)

// countLoop builds: counter = 0; loop: if counter > n goto done; counter += 1; goto loop; done:
func countLoop() *program.Program {
	return program.MustBuild(
		opcode.NewAssign("counter", opcode.Int(0)),
		opcode.NewLabel("loop"),
		opcode.NewJump("done", opcode.Bin(opcode.Gt, opcode.Ref("counter"), opcode.Ref("n"))),
		opcode.NewExpression("counter", opcode.Bin(opcode.Add, opcode.Ref("counter"), opcode.Int(1))),
		opcode.NewGoto("loop"),
		opcode.NewLabel("done"),
	)
}

// Property: カウントループの反復回数
// 任意の非負整数 n について、counter > n で抜けるループは counter = n + 1 で終了する。
func TestPropertyRun_CountLoopEndsAtNPlusOne(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	prog := countLoop()

	properties.Property("counter ends at n+1", prop.ForAll(
		func(n int64) bool {
			var out bytes.Buffer
			initial := EnvironmentOf(map[string]value.Value{"n": value.Int(n)})
			env, err := newTestVM(&out, WithMaxSteps(0)).Run(prog, initial)
			if err != nil {
				return false
			}
			v, _ := env.Get("counter")
			got, ok := v.AsInt()
			return ok && got == n+1
		},
		gen.Int64Range(0, 500),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: 実行の決定性
// 同じプログラム・同じ入力・同じ乱数列で実行すると、最終環境は常に等しい。
func TestPropertyRun_Deterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	prog := program.MustBuild(
		opcode.NewAssign("r", opcode.Rand(opcode.Int(0), opcode.Ref("n"))),
		opcode.NewExpression("n", opcode.Bin(opcode.Sub, opcode.Ref("n"), opcode.Ref("r"))),
		opcode.NewAssign("q", opcode.Bin(opcode.Mod, opcode.Ref("r"), opcode.Int(7))),
	)

	properties.Property("same inputs give the same environment", prop.ForAll(
		func(n, offset int64) bool {
			run := func() *Environment {
				var out bytes.Buffer
				initial := EnvironmentOf(map[string]value.Value{"n": value.Int(n)})
				env, err := newTestVM(&out, WithRandom(fixedRandom{offset: offset})).Run(prog, initial)
				if err != nil {
					return nil
				}
				return env
			}
			a, b := run(), run()
			return a != nil && b != nil && a.Equal(b)
		},
		gen.Int64Range(0, 1000),
		gen.Int64Range(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
